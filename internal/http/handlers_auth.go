package http

import (
	"log/slog"
	"net/http"
	"strings"

	"tally/internal/auth"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	email := sanitizeInput(r.Form.Get("email"))
	password1 := r.Form.Get("password1")
	password2 := r.Form.Get("password2")

	switch {
	case username == "" || email == "":
		respondError(w, http.StatusUnprocessableEntity, "username and email are required")
		return
	case len(password1) < 8:
		respondError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	case password1 != password2:
		respondError(w, http.StatusUnprocessableEntity, "passwords do not match")
		return
	}

	hash, err := auth.HashPassword(password1)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := s.repo.CreateUser(r.Context(), username, email, hash)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	// The profile is created on first touch so it exists before any view.
	if _, err := s.repo.ProfileFor(r.Context(), user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Profile creation failed", "user_id", user.ID, "error", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", user.ID, "username", user.Username)
	s.setSessionCookie(w, token)
	redirectAfterMutation(w, r, "/dashboard")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")

	user, err := s.repo.UserByUsername(r.Context(), username)
	if err != nil {
		// Indistinguishable from a wrong password.
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID, "username", user.Username)
	s.setSessionCookie(w, token)
	redirectAfterMutation(w, r, "/dashboard")
}

// handleLoginPrompt is the landing target for unauthenticated redirects. The
// UI is rendered by a separate frontend; the API answers with a 401 prompt.
func handleLoginPrompt(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusUnauthorized, "authentication required")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	redirectAfterMutation(w, r, "/login")
}
