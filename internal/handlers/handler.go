// Package handlers exposes the plant, feed, species and account services
// over JSON HTTP.
package handlers

import (
	"time"

	"github.com/planthead/planthead-backend/internal/services"
)

// maxUploadMemory is the multipart memory budget; larger parts spill to disk.
const maxUploadMemory = 32 << 20

// Options wires the services behind the HTTP surface.
type Options struct {
	Accounts    *services.Accounts
	Plants      *services.Plants
	Posts       *services.Posts
	Profiles    *services.Profiles
	Species     *services.SpeciesLookup
	Uploads     *services.Uploads
	Feed        *services.FeedHub
	PlantBucket string
	PostBucket  string
	// AllowedOrigins restricts WebSocket upgrades. Empty allows any origin.
	AllowedOrigins []string
}

type Handler struct {
	accounts    *services.Accounts
	plants      *services.Plants
	posts       *services.Posts
	profiles    *services.Profiles
	species     *services.SpeciesLookup
	uploads     *services.Uploads
	feed        *services.FeedHub
	plantBucket string
	postBucket  string
	origins     []string
	now         func() time.Time
}

func New(opts Options) *Handler {
	return &Handler{
		accounts:    opts.Accounts,
		plants:      opts.Plants,
		posts:       opts.Posts,
		profiles:    opts.Profiles,
		species:     opts.Species,
		uploads:     opts.Uploads,
		feed:        opts.Feed,
		plantBucket: opts.PlantBucket,
		postBucket:  opts.PostBucket,
		origins:     opts.AllowedOrigins,
		now:         time.Now,
	}
}
