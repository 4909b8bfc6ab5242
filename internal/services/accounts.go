package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/store"
	"github.com/planthead/planthead-backend/pkg/utils"
)

// SessionDuration is 7 days
const SessionDuration = 7 * 24 * time.Hour

// Sign-out scopes.
const (
	SignOutCurrent = "current"
	SignOutAll     = "all"
)

// Accounts handles sign-up, sign-in and the session lifecycle.
type Accounts struct {
	accounts store.AccountStore
	sessions store.SessionStore
}

func NewAccounts(accounts store.AccountStore, sessions store.SessionStore) *Accounts {
	return &Accounts{accounts: accounts, sessions: sessions}
}

// SignUp creates an account and signs it in. The returned token identifies
// the new session.
func (s *Accounts) SignUp(ctx context.Context, email, password, name string) (models.Session, string, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return models.Session{}, "", err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return models.Session{}, "", err
	}
	if err := utils.ValidateName(name); err != nil {
		return models.Session{}, "", err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.Session{}, "", err
	}

	account := models.Account{
		Email:        utils.NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := s.accounts.CreateAccount(ctx, &account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Session{}, "", ErrConflict
		}
		return models.Session{}, "", remote("create account", err)
	}

	return s.openSession(ctx, account)
}

// SignIn checks credentials and opens a new session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Accounts) SignIn(ctx context.Context, email, password string) (models.Session, string, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	account, err := s.accounts.AccountByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, "", ErrUnauthenticated
	}
	if err != nil {
		return models.Session{}, "", remote("find account", err)
	}

	ok, err := utils.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		log.Printf("⚠️  Stored password hash for %s is unreadable: %v", account.ID, err)
		return models.Session{}, "", ErrUnauthenticated
	}
	if !ok {
		return models.Session{}, "", ErrUnauthenticated
	}

	return s.openSession(ctx, account)
}

func (s *Accounts) openSession(ctx context.Context, account models.Account) (models.Session, string, error) {
	token, err := s.sessions.CreateSession(ctx, account.ID, SessionDuration)
	if err != nil {
		return models.Session{}, "", remote("create session", err)
	}
	return models.SessionOf(account), token, nil
}

// CurrentSession resolves a token to the signed-in account.
func (s *Accounts) CurrentSession(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrUnauthenticated
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	userID, err := s.sessions.SessionUser(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, ErrUnauthenticated
	}
	if err != nil {
		return models.Session{}, remote("read session", err)
	}

	account, err := s.accounts.AccountByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, ErrUnauthenticated
	}
	if err != nil {
		return models.Session{}, remote("find account", err)
	}
	return models.SessionOf(account), nil
}

// SignOut ends the session behind token, or every session of its user when
// scope is "all".
func (s *Accounts) SignOut(ctx context.Context, token, scope string) error {
	switch scope {
	case "", SignOutCurrent:
		ctx, cancel := withStoreTimeout(ctx)
		defer cancel()
		return remote("delete session", s.sessions.DeleteSession(ctx, token))
	case SignOutAll:
		ctx, cancel := withStoreTimeout(ctx)
		defer cancel()
		userID, err := s.sessions.SessionUser(ctx, token)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthenticated
		}
		if err != nil {
			return remote("read session", err)
		}
		return remote("delete sessions", s.sessions.DeleteUserSessions(ctx, userID))
	default:
		return utils.Invalid("scope", "Scope must be current or all")
	}
}

// UpdateName changes the display name. Existing posts keep the old name.
func (s *Accounts) UpdateName(ctx context.Context, userID, name string) (models.Session, error) {
	if err := utils.ValidateName(name); err != nil {
		return models.Session{}, err
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := s.accounts.UpdateName(ctx, userID, strings.TrimSpace(name)); err != nil {
		return models.Session{}, remote("update name", err)
	}
	account, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return models.Session{}, remote("find account", err)
	}
	return models.SessionOf(account), nil
}

// UpdatePassword replaces the password hash. Open sessions stay valid.
func (s *Accounts) UpdatePassword(ctx context.Context, userID, password string) error {
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	return remote("update password", s.accounts.UpdatePasswordHash(ctx, userID, hash))
}

// Account returns the stored account for a user id.
func (s *Accounts) Account(ctx context.Context, userID string) (models.Account, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	account, err := s.accounts.AccountByID(ctx, userID)
	if err != nil {
		return models.Account{}, remote("find account", err)
	}
	return account, nil
}
