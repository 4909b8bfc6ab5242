package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planthead/planthead-backend/internal/store"
)

// storeTimeout bounds every call into a store or blob backend.
const storeTimeout = 5 * time.Second

var (
	// ErrNotFound means the record does not exist or belongs to someone else.
	ErrNotFound = store.ErrNotFound
	// ErrUnauthenticated means there is no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrConflict means a unique value such as an email is already taken.
	ErrConflict = errors.New("already exists")
)

// RemoteServiceError wraps a failure of a backing store or blob service.
type RemoteServiceError struct {
	Op  string
	Err error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// RemoteLookupError wraps a failed call to the species database.
type RemoteLookupError struct {
	StatusCode int
	Err        error
}

func (e *RemoteLookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("species lookup failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("species lookup failed: %v", e.Err)
}

func (e *RemoteLookupError) Unwrap() error {
	return e.Err
}

// remote maps store errors onto service errors. Not-found passes through.
func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return &RemoteServiceError{Op: op, Err: err}
}

func withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}
