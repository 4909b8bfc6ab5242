package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/planthead/planthead-backend/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresAccounts stores accounts in the users table.
type PostgresAccounts struct {
	db *sql.DB
}

func NewPostgresAccounts(db *sql.DB) *PostgresAccounts {
	return &PostgresAccounts{db: db}
}

func (s *PostgresAccounts) CreateAccount(ctx context.Context, a *models.Account) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at
	`, a.ID, a.Email, a.Name, a.PasswordHash).Scan(&a.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (s *PostgresAccounts) AccountByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.scanOne(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`, email)
}

func (s *PostgresAccounts) AccountByID(ctx context.Context, id string) (models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Account{}, ErrNotFound
	}
	return s.scanOne(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = $1
	`, id)
}

func (s *PostgresAccounts) UpdateName(ctx context.Context, id, name string) error {
	return s.execOne(ctx, `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
}

func (s *PostgresAccounts) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.execOne(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (s *PostgresAccounts) scanOne(ctx context.Context, query string, arg interface{}) (models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// execOne runs an update keyed by the account id in args[0].
func (s *PostgresAccounts) execOne(ctx context.Context, query string, args ...interface{}) error {
	if id, _ := args[0].(string); uuid.Validate(id) != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
