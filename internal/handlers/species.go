package handlers

import (
	"net/http"
)

// SearchSpecies proxies ?q= to the species database.
func (h *Handler) SearchSpecies(w http.ResponseWriter, r *http.Request) {
	records, err := h.species.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", envelope{"data": records})
}
