package services

import (
	"context"
	"errors"
	"testing"

	"github.com/planthead/planthead-backend/internal/store"
	"github.com/planthead/planthead-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccounts() *Accounts {
	mem := store.NewMemory()
	return NewAccounts(mem, mem)
}

func TestSignUpThenEmptyPlantList(t *testing.T) {
	mem := store.NewMemory()
	accounts := NewAccounts(mem, mem)
	plants := NewPlants(mem, nil)
	ctx := context.Background()

	session, token, err := accounts.SignUp(ctx, "a@b.com", "pw123456", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ada", session.Name)
	assert.Equal(t, "a@b.com", session.Email)

	current, err := accounts.CurrentSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, current.ID)

	list, err := plants.ListPlants(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSignUpValidation(t *testing.T) {
	accounts := newTestAccounts()
	ctx := context.Background()
	var verr *utils.ValidationError

	_, _, err := accounts.SignUp(ctx, "not-an-email", "pw123456", "Ada")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)

	_, _, err = accounts.SignUp(ctx, "a@b.com", "short", "Ada")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Field)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	accounts := newTestAccounts()
	ctx := context.Background()

	_, _, err := accounts.SignUp(ctx, "a@b.com", "pw123456", "Ada")
	require.NoError(t, err)
	_, _, err = accounts.SignUp(ctx, "A@B.com", "pw654321", "Other")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignIn(t *testing.T) {
	accounts := newTestAccounts()
	ctx := context.Background()

	_, _, err := accounts.SignUp(ctx, "a@b.com", "pw123456", "Ada")
	require.NoError(t, err)

	session, token, err := accounts.SignIn(ctx, "A@b.com ", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ada", session.Name)

	_, _, err = accounts.SignIn(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = accounts.SignIn(ctx, "nobody@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentSessionRequiresToken(t *testing.T) {
	accounts := newTestAccounts()
	_, err := accounts.CurrentSession(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = accounts.CurrentSession(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignOutScopes(t *testing.T) {
	accounts := newTestAccounts()
	ctx := context.Background()

	_, first, err := accounts.SignUp(ctx, "a@b.com", "pw123456", "Ada")
	require.NoError(t, err)
	_, second, err := accounts.SignIn(ctx, "a@b.com", "pw123456")
	require.NoError(t, err)
	_, third, err := accounts.SignIn(ctx, "a@b.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, accounts.SignOut(ctx, first, SignOutCurrent))
	_, err = accounts.CurrentSession(ctx, first)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = accounts.CurrentSession(ctx, second)
	require.NoError(t, err)

	require.NoError(t, accounts.SignOut(ctx, second, SignOutAll))
	for _, token := range []string{second, third} {
		_, err = accounts.CurrentSession(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}

	var verr *utils.ValidationError
	assert.True(t, errors.As(accounts.SignOut(ctx, "x", "everything"), &verr))
}

func TestUpdateNameAndPassword(t *testing.T) {
	accounts := newTestAccounts()
	ctx := context.Background()

	session, _, err := accounts.SignUp(ctx, "a@b.com", "pw123456", "Ada")
	require.NoError(t, err)

	updated, err := accounts.UpdateName(ctx, session.ID, "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	require.NoError(t, accounts.UpdatePassword(ctx, session.ID, "new-password"))
	_, _, err = accounts.SignIn(ctx, "a@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = accounts.SignIn(ctx, "a@b.com", "new-password")
	assert.NoError(t, err)

	var verr *utils.ValidationError
	assert.True(t, errors.As(accounts.UpdatePassword(ctx, session.ID, "short"), &verr))
}
