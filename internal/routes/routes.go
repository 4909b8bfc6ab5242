package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/planthead/planthead-backend/internal/handlers"
	"github.com/planthead/planthead-backend/internal/middleware"
)

// Options tunes route-specific limits.
type Options struct {
	// SpeciesPerMinute caps species searches per IP, since each miss costs an
	// upstream call.
	SpeciesPerMinute int
}

func SetupRoutes(r chi.Router, h *handlers.Handler, sessions middleware.SessionResolver, opts Options) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Public auth routes
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))

		r.Get("/api/auth/me", h.Me)
		r.Delete("/api/auth/session", h.Signout)
		r.Put("/api/account/name", h.UpdateName)
		r.Put("/api/account/password", h.UpdatePassword)
		r.Get("/api/profile", h.Profile)

		r.Get("/api/plants", h.ListPlants)
		r.Post("/api/plants", h.AddPlant)
		r.Post("/api/plants/{id}/water", h.WaterPlant)

		r.Get("/api/posts", h.ListPosts)
		r.Post("/api/posts", h.CreatePost)
		r.Post("/api/posts/{id}/like", h.LikePost)

		r.With(httprate.Limit(
			opts.SpeciesPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		)).Get("/api/species", h.SearchSpecies)

		r.Post("/api/upload", h.UploadFile)
		r.Get("/api/files/{bucket}/{id}", h.FileURL)

		r.Get("/ws/feed", h.FeedWebSocket)
	})
}
