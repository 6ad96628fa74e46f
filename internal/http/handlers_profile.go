package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)
	user, err := s.repo.UserByID(r.Context(), owner)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	profile, err := s.repo.ProfileFor(r.Context(), owner)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Currency string `json:"currency"`
	}{
		Username: user.Username,
		Email:    user.Email,
		Role:     profile.Role,
		Currency: profile.Currency,
	}
	respondJSON(w, http.StatusOK, out)
}

// handleUpdateProfile updates email and display currency. Empty fields are
// left unchanged.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	owner := userID(r)

	if email := sanitizeInput(r.Form.Get("email")); email != "" {
		if !strings.Contains(email, "@") {
			respondError(w, http.StatusUnprocessableEntity, "invalid email")
			return
		}
		if err := s.repo.UpdateUserEmail(r.Context(), owner, email); err != nil {
			respondStorageError(w, r, err)
			return
		}
	}
	if currency := sanitizeInput(r.Form.Get("currency")); currency != "" {
		if err := s.repo.UpdateProfileCurrency(r.Context(), owner, currency); err != nil {
			respondStorageError(w, r, err)
			return
		}
	}
	redirectAfterMutation(w, r, "/profile")
}
