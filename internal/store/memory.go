package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/planthead/planthead-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// Memory implements every store interface in process memory. It backs
// STORE_DRIVER=memory and the test suites.
type Memory struct {
	mu       sync.Mutex
	now      func() time.Time
	plants   []models.Plant
	posts    []models.Post
	accounts map[string]models.Account
	sessions map[string]memorySession
}

func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		accounts: make(map[string]models.Account),
		sessions: make(map[string]memorySession),
	}
}

// SetClock replaces the clock used for account timestamps and session expiry.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func clonePlant(p models.Plant) models.Plant {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func (m *Memory) InsertPlant(_ context.Context, p *models.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.plants = append(m.plants, clonePlant(*p))
	return nil
}

func (m *Memory) PlantsByOwner(_ context.Context, userID string) ([]models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Plant{}
	for _, p := range m.plants {
		if p.UserID == userID {
			out = append(out, clonePlant(p))
		}
	}
	return out, nil
}

func (m *Memory) PlantByID(_ context.Context, userID, plantID string) (models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plants {
		if p.ID.Hex() == plantID && p.UserID == userID {
			return clonePlant(p), nil
		}
	}
	return models.Plant{}, ErrNotFound
}

func (m *Memory) RecordWatering(_ context.Context, userID, plantID, image string, at time.Time) (models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.plants {
		if p.ID.Hex() == plantID && p.UserID == userID {
			m.plants[i] = p.Watered(image, at)
			return clonePlant(m.plants[i]), nil
		}
	}
	return models.Plant{}, ErrNotFound
}

func (m *Memory) InsertPost(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.posts = append(m.posts, *p)
	return nil
}

func (m *Memory) RecentPosts(_ context.Context, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Later inserts win ties on created_at.
	out := make([]models.Post, 0, len(m.posts))
	for i := len(m.posts) - 1; i >= 0; i-- {
		out = append(out, m.posts[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) AdjustLikes(_ context.Context, postID string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].ID.Hex() != postID {
			continue
		}
		likes := m.posts[i].Likes + delta
		if likes < 0 {
			likes = 0
		}
		m.posts[i].Likes = likes
		return likes, nil
	}
	return 0, ErrNotFound
}

func (m *Memory) CreateAccount(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = m.now().UTC()
	m.accounts[a.ID] = *a
	return nil
}

func (m *Memory) AccountByEmail(_ context.Context, email string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return models.Account{}, ErrNotFound
}

func (m *Memory) AccountByID(_ context.Context, id string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) UpdateName(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.Name = name
	m.accounts[id] = a
	return nil
}

func (m *Memory) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = hash
	m.accounts[id] = a
	return nil
}

func (m *Memory) CreateSession(_ context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = memorySession{userID: userID, expiresAt: m.now().Add(ttl)}
	return token, nil
}

func (m *Memory) SessionUser(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return "", ErrNotFound
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, token)
		return "", ErrNotFound
	}
	return s.userID, nil
}

func (m *Memory) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *Memory) DeleteUserSessions(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.userID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}
