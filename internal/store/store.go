// Package store holds the document, account and session stores behind the
// domain services, with MongoDB, PostgreSQL and Redis drivers and an
// in-memory driver for local development and tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// PlantStore persists plants.
type PlantStore interface {
	InsertPlant(ctx context.Context, p *models.Plant) error
	PlantsByOwner(ctx context.Context, userID string) ([]models.Plant, error)
	// PlantByID returns ErrNotFound for unknown ids and plants of other users.
	PlantByID(ctx context.Context, userID, plantID string) (models.Plant, error)
	// RecordWatering prepends image, sets last_watered and increments the
	// streak of the owner's plant in one update.
	RecordWatering(ctx context.Context, userID, plantID, image string, at time.Time) (models.Plant, error)
}

// PostStore persists feed posts.
type PostStore interface {
	InsertPost(ctx context.Context, p *models.Post) error
	// RecentPosts returns at most limit posts, newest first.
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	// AdjustLikes adds delta to the like count, never going below zero, and
	// returns the stored count.
	AdjustLikes(ctx context.Context, postID string, delta int) (int, error)
}

// AccountStore persists accounts. Emails are stored normalized.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	AccountByEmail(ctx context.Context, email string) (models.Account, error)
	AccountByID(ctx context.Context, id string) (models.Account, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// SessionStore maps opaque tokens to account ids.
type SessionStore interface {
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error)
	SessionUser(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID string) error
}
