package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.repo.ListCategories(r.Context(), userID(r))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryToView(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	c := core.Category{
		Name: sanitizeInput(r.Form.Get("name")),
		Icon: sanitizeInput(r.Form.Get("icon")),
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, err := s.repo.CreateCategory(r.Context(), userID(r), c); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/categories")
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	c := core.Category{
		ID:   id,
		Name: sanitizeInput(r.Form.Get("name")),
		Icon: sanitizeInput(r.Form.Get("icon")),
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	owner := userID(r)
	if err := s.repo.UpdateCategory(r.Context(), owner, c); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/categories")
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	owner := userID(r)
	if err := s.repo.DeleteCategory(r.Context(), owner, id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	// Expenses keep their rows with the category detached; budgets for the
	// category are gone, so cached totals are stale.
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/categories")
}
