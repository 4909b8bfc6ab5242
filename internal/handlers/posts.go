package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/planthead/planthead-backend/internal/middleware"
	"github.com/planthead/planthead-backend/internal/services"
	"github.com/planthead/planthead-backend/pkg/utils"
)

type LikeRequest struct {
	Liked bool `json:"liked"`
}

// ListPosts returns the newest posts. A missing or malformed limit uses
// the default.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.posts.ListPosts(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", envelope{"posts": posts})
}

// CreatePost uploads the image and publishes the post.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	if !parseMultipart(w, r) {
		return
	}

	caption := r.FormValue("caption")
	if err := services.ValidateCaption(caption); err != nil {
		writeError(w, r, err)
		return
	}
	files := formFiles(r, "image")
	if len(files) == 0 {
		writeError(w, r, utils.Invalid("image", "An image is required"))
		return
	}

	file, err := h.uploads.Store(r.Context(), h.postBucket, uploadOf(files[0]))
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.posts.CreatePost(r.Context(), session, caption, file.Ref())
	if err != nil {
		log.Printf("⚠️  Post not saved, image %s orphaned: %v", file.Ref(), err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Post created", envelope{"post": post})
}

// LikePost toggles the caller's like. The body carries the caller's current
// view of the like state.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.posts.ToggleLike(r.Context(), chi.URLParam(r, "id"), req.Liked)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "OK", envelope{"like": result})
}
