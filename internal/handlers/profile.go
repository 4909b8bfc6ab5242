package handlers

import (
	"net/http"

	"github.com/planthead/planthead-backend/internal/middleware"
)

// Profile returns the caller's derived profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())

	profile, err := h.profiles.GetProfile(r.Context(), session.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", envelope{"profile": profile})
}
