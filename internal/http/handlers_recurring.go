package http

import (
	"net/http"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListRecurringExpenses(r.Context(), userID(r))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]recurringView, 0, len(items))
	for _, re := range items {
		out = append(out, recurringToView(re))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	re, err := parseRecurringForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	owner := userID(r)
	if err := s.ensureOwnCategory(r, owner, re.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}
	if _, err := s.repo.CreateRecurringExpense(r.Context(), owner, re); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/recurring")
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	re, err := parseRecurringForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	re.ID = id

	owner := userID(r)
	if err := s.ensureOwnCategory(r, owner, re.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}
	if err := s.repo.UpdateRecurringExpense(r.Context(), owner, re); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/recurring")
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.repo.DeleteRecurringExpense(r.Context(), userID(r), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/recurring")
}
