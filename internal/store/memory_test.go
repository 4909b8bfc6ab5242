package store

import (
	"context"
	"testing"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ PlantStore   = (*Memory)(nil)
	_ PostStore    = (*Memory)(nil)
	_ AccountStore = (*Memory)(nil)
	_ SessionStore = (*Memory)(nil)
	_ PlantStore   = (*MongoPlants)(nil)
	_ PostStore    = (*MongoPosts)(nil)
	_ AccountStore = (*PostgresAccounts)(nil)
	_ SessionStore = (*RedisSessions)(nil)
)

func TestMemoryRecordWateringIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p := &models.Plant{UserID: "owner", Name: "Fern", Images: []string{"a"}}
	require.NoError(t, m.InsertPlant(ctx, p))

	_, err := m.RecordWatering(ctx, "someone-else", p.ID.Hex(), "b", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := m.RecordWatering(ctx, "owner", p.ID.Hex(), "b", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got.Images)
	assert.Equal(t, 1, got.Streak)
}

func TestMemoryReturnedPlantsDoNotAliasStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := &models.Plant{UserID: "owner", Images: []string{"a"}}
	require.NoError(t, m.InsertPlant(ctx, p))

	plants, err := m.PlantsByOwner(ctx, "owner")
	require.NoError(t, err)
	plants[0].Images[0] = "mutated"

	plants, err = m.PlantsByOwner(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "a", plants[0].Images[0])
}

func TestMemoryAdjustLikesFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := &models.Post{Caption: "hi"}
	require.NoError(t, m.InsertPost(ctx, p))

	likes, err := m.AdjustLikes(ctx, p.ID.Hex(), -1)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	_, err = m.AdjustLikes(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateAccount(ctx, &models.Account{Email: "a@b.com"}))
	assert.ErrorIs(t, m.CreateAccount(ctx, &models.Account{Email: "A@B.com"}), ErrDuplicate)
}

func TestMemorySessionsExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	token, err := m.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)

	userID, err := m.SessionUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	now = now.Add(time.Hour)
	_, err = m.SessionUser(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteUserSessions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a, _ := m.CreateSession(ctx, "u1", time.Hour)
	b, _ := m.CreateSession(ctx, "u1", time.Hour)
	other, _ := m.CreateSession(ctx, "u2", time.Hour)

	require.NoError(t, m.DeleteUserSessions(ctx, "u1"))

	for _, token := range []string{a, b} {
		_, err := m.SessionUser(ctx, token)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	_, err := m.SessionUser(ctx, other)
	assert.NoError(t, err)
}
