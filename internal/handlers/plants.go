package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/planthead/planthead-backend/internal/middleware"
	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/services"
	"github.com/planthead/planthead-backend/pkg/utils"
)

func (h *Handler) describeAll(plants []models.Plant) []services.PlantStatus {
	now := h.now()
	out := make([]services.PlantStatus, 0, len(plants))
	for _, p := range plants {
		out = append(out, services.Describe(p, now))
	}
	return out
}

// ListPlants returns the caller's plants with their watering schedule.
func (h *Handler) ListPlants(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())

	plants, err := h.plants.ListPlants(r.Context(), session.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", envelope{"plants": h.describeAll(plants)})
}

// AddPlant uploads the posted images and registers the plant.
func (h *Handler) AddPlant(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	if !parseMultipart(w, r) {
		return
	}

	interval := 0
	if v := strings.TrimSpace(r.FormValue("watering_interval")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, utils.Invalid("watering_interval", "Watering interval must be a whole number of days"))
			return
		}
		interval = n
	}
	name := r.FormValue("name")
	species := r.FormValue("species")
	if err := services.ValidatePlantInput(name, species, interval); err != nil {
		writeError(w, r, err)
		return
	}

	files := formFiles(r, "images")
	if len(files) == 0 {
		writeError(w, r, utils.Invalid("images", "At least one image is required"))
		return
	}

	refs, err := h.uploads.StoreAll(r.Context(), h.plantBucket, uploadsOf(files))
	if err != nil {
		writeError(w, r, err)
		return
	}

	plant, err := h.plants.AddPlant(r.Context(), session.ID, name, species, refs, interval)
	if err != nil {
		log.Printf("⚠️  Plant not saved, uploaded image(s) %v orphaned: %v", refs, err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Plant added", envelope{"plant": services.Describe(plant, h.now())})
}

// WaterPlant records a watering with a new photo of the plant.
func (h *Handler) WaterPlant(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	plantID := chi.URLParam(r, "id")
	if !parseMultipart(w, r) {
		return
	}

	files := formFiles(r, "image")
	if len(files) == 0 {
		writeError(w, r, utils.Invalid("image", "An image is required"))
		return
	}

	// Unknown and foreign plants are rejected before anything is uploaded.
	if _, err := h.plants.Plant(r.Context(), session.ID, plantID); err != nil {
		writeError(w, r, err)
		return
	}

	file, err := h.uploads.Store(r.Context(), h.plantBucket, uploadOf(files[0]))
	if err != nil {
		writeError(w, r, err)
		return
	}

	plant, err := h.plants.RecordWatering(r.Context(), session.ID, plantID, file.Ref())
	if err != nil {
		log.Printf("⚠️  Watering not saved, image %s orphaned: %v", file.Ref(), err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Watering recorded", envelope{"plant": services.Describe(plant, h.now())})
}
