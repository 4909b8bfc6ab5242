package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultWateringInterval is used when a plant is registered without an interval.
const DefaultWateringInterval = 7

// Plant is a user's registered plant. Images are ordered most recent first.
type Plant struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UserID           string             `bson:"user_id" json:"user_id"`
	Name             string             `bson:"name" json:"name"`
	Species          string             `bson:"species" json:"species"`
	Images           []string           `bson:"images" json:"images"`
	WateringInterval int                `bson:"watering_interval" json:"watering_interval"`
	LastWatered      time.Time          `bson:"last_watered" json:"last_watered"`

	// Streak counts recorded waterings. It never resets when a plant is overdue.
	Streak int `bson:"streak" json:"streak"`
}

// Watered returns a copy of p with image prepended, LastWatered set to at and
// the streak incremented by one.
func (p Plant) Watered(image string, at time.Time) Plant {
	images := make([]string, 0, len(p.Images)+1)
	images = append(images, image)
	images = append(images, p.Images...)
	p.Images = images
	p.LastWatered = at
	p.Streak++
	return p
}
