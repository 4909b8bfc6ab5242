package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/planthead/planthead-backend/pkg/utils"
)

func (h *Handler) knownBucket(bucket string) bool {
	return bucket != "" && (bucket == h.plantBucket || bucket == h.postBucket)
}

// UploadFile stores a single file (form field "file") in ?bucket=.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	bucket := r.URL.Query().Get("bucket")
	if !h.knownBucket(bucket) {
		writeError(w, r, utils.Invalid("bucket", "Unknown bucket"))
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	files := formFiles(r, "file")
	if len(files) == 0 {
		writeError(w, r, utils.Invalid("file", "No file provided"))
		return
	}

	stored, err := h.uploads.Store(r.Context(), bucket, uploadOf(files[0]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "File uploaded successfully", envelope{
		"id":     stored.ID,
		"bucket": stored.Bucket,
		"url":    stored.URL,
	})
}

// FileURL resolves the view URL of a stored file.
func (h *Handler) FileURL(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !h.knownBucket(bucket) {
		writeJSON(w, http.StatusNotFound, "Not found", nil)
		return
	}

	url, err := h.uploads.ViewURL(r.Context(), bucket, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", envelope{"url": url})
}
