package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/planthead/planthead-backend/internal/services"
	"github.com/planthead/planthead-backend/pkg/utils"
)

// envelope is merged into every JSON response.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"success": status < 400, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *utils.ValidationError
		lookup     *services.RemoteLookupError
		remote     *services.RemoteServiceError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, validation.Message, envelope{"field": validation.Field})
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, "Authentication required", nil)
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, services.ErrConflict):
		writeJSON(w, http.StatusConflict, "An account with this email already exists", nil)
	case errors.As(err, &lookup):
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusBadGateway, "Species lookup is unavailable", nil)
	case errors.As(err, &remote):
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusBadGateway, "A backing service failed", nil)
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}
