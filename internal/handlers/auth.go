package handlers

import (
	"errors"
	"net/http"

	"github.com/planthead/planthead-backend/internal/middleware"
	"github.com/planthead/planthead-backend/internal/services"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// Signup creates an account and returns its first session token.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, token, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Account created", envelope{"user": session, "token": token})
}

// Signin opens a new session for valid credentials.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, token, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrUnauthenticated) {
		writeJSON(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Signed in", envelope{"user": session, "token": token})
}

// Me returns the caller's session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, "OK", envelope{"user": session})
}

// Signout ends the current session, or all of the user's sessions with
// ?scope=all.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if err := h.accounts.SignOut(r.Context(), middleware.TokenFrom(r.Context()), scope); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Signed out", nil)
}

func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req UpdateNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, _ := middleware.SessionFrom(r.Context())

	updated, err := h.accounts.UpdateName(r.Context(), session.ID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Name updated", envelope{"user": updated})
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, _ := middleware.SessionFrom(r.Context())

	if err := h.accounts.UpdatePassword(r.Context(), session.ID, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Password updated", nil)
}
