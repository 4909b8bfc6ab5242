package services

import (
	"context"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
)

// Profiles derives user profiles from accounts and plants.
type Profiles struct {
	accounts *Accounts
	plants   *Plants
	now      func() time.Time
}

func NewProfiles(accounts *Accounts, plants *Plants) *Profiles {
	return &Profiles{accounts: accounts, plants: plants, now: time.Now}
}

func (s *Profiles) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	account, err := s.accounts.Account(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	plants, err := s.plants.owned(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	return models.UserProfile{
		Name:        account.Name,
		Email:       account.Email,
		PlantsCount: len(plants),
		StreakDays:  ComputeStreakDays(plants, s.now()),
		JoinDate:    account.CreatedAt,
	}, nil
}
