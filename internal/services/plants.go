package services

import (
	"context"
	"strings"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/store"
	"github.com/planthead/planthead-backend/pkg/utils"
)

// Plants is the plant registry. Documents hold file references; the plants
// it returns carry view URLs built by files.
type Plants struct {
	store store.PlantStore
	files FileLinker
	now   func() time.Time
}

// NewPlants builds the registry. files may be nil, in which case image
// references are returned as stored.
func NewPlants(s store.PlantStore, files FileLinker) *Plants {
	return &Plants{store: s, files: files, now: time.Now}
}

func (s *Plants) link(ctx context.Context, p models.Plant) (models.Plant, error) {
	if s.files == nil {
		return p, nil
	}
	urls, err := s.files.LinkRefs(ctx, p.Images)
	if err != nil {
		return models.Plant{}, err
	}
	p.Images = urls
	return p, nil
}

// ValidatePlantInput checks the plant fields that do not depend on uploads.
func ValidatePlantInput(name, species string, interval int) error {
	switch {
	case strings.TrimSpace(name) == "":
		return utils.Invalid("name", "Plant name is required")
	case strings.TrimSpace(species) == "":
		return utils.Invalid("species", "Species is required")
	case interval < 0:
		return utils.Invalid("watering_interval", "Watering interval must be a positive number of days")
	}
	return nil
}

// AddPlant registers a plant for owner. An interval of 0 selects the default.
func (s *Plants) AddPlant(ctx context.Context, owner, name, species string, images []string, interval int) (models.Plant, error) {
	name = strings.TrimSpace(name)
	species = strings.TrimSpace(species)
	if err := ValidatePlantInput(name, species, interval); err != nil {
		return models.Plant{}, err
	}
	if len(images) == 0 {
		return models.Plant{}, utils.Invalid("images", "At least one image is required")
	}
	if interval == 0 {
		interval = models.DefaultWateringInterval
	}

	now := s.now().UTC()
	plant := models.Plant{
		CreatedAt:        now,
		UserID:           owner,
		Name:             name,
		Species:          species,
		Images:           append([]string(nil), images...),
		WateringInterval: interval,
		LastWatered:      now,
		Streak:           0,
	}

	storeCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := s.store.InsertPlant(storeCtx, &plant); err != nil {
		return models.Plant{}, remote("insert plant", err)
	}
	return s.link(ctx, plant)
}

// ListPlants returns every plant owned by owner.
func (s *Plants) ListPlants(ctx context.Context, owner string) ([]models.Plant, error) {
	plants, err := s.owned(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range plants {
		if plants[i], err = s.link(ctx, plants[i]); err != nil {
			return nil, err
		}
	}
	return plants, nil
}

// owned lists plants with their images as stored.
func (s *Plants) owned(ctx context.Context, owner string) ([]models.Plant, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	plants, err := s.store.PlantsByOwner(ctx, owner)
	if err != nil {
		return nil, remote("list plants", err)
	}
	return plants, nil
}

// Plant returns one of owner's plants. Unknown ids and plants of other users
// are ErrNotFound.
func (s *Plants) Plant(ctx context.Context, owner, plantID string) (models.Plant, error) {
	storeCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	plant, err := s.store.PlantByID(storeCtx, owner, plantID)
	if err != nil {
		return models.Plant{}, remote("get plant", err)
	}
	return s.link(ctx, plant)
}

// RecordWatering adds a new photo to the owner's plant, stamps it watered now
// and bumps its streak by one.
func (s *Plants) RecordWatering(ctx context.Context, owner, plantID, image string) (models.Plant, error) {
	if image == "" {
		return models.Plant{}, utils.Invalid("image", "An image is required")
	}

	storeCtx, cancel := withStoreTimeout(ctx)
	defer cancel()
	plant, err := s.store.RecordWatering(storeCtx, owner, plantID, image, s.now().UTC())
	if err != nil {
		return models.Plant{}, remote("record watering", err)
	}
	return s.link(ctx, plant)
}
