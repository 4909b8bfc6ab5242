package models

import (
	"time"
)

// Account is a registered user. PasswordHash is never serialized.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"-"`
}

// Session is the identity attached to an authenticated request.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionOf builds the public session view of an account.
func SessionOf(a Account) Session {
	return Session{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// UserProfile is derived on read from the account and its plants.
type UserProfile struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PlantsCount int       `json:"plants_count"`
	StreakDays  int       `json:"streak_days"`
	JoinDate    time.Time `json:"join_date"`
}
