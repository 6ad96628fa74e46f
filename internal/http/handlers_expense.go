package http

import (
	"net/http"
	"strconv"
	"strings"

	"tally/internal/core"
	"tally/internal/storage"
)

// ensureOwnCategory verifies that a referenced category belongs to the
// caller. A foreign category reads as ErrNotFound, like any other row.
func (s *Server) ensureOwnCategory(r *http.Request, owner int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.repo.CategoryByID(r.Context(), owner, *categoryID)
	return err
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ExpenseFilter{
		Search: strings.TrimSpace(q.Get("q")),
	}
	if v := strings.TrimSpace(q.Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = id
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status := core.ExpenseStatus(strings.ToUpper(v))
		if status.Validate() != nil {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = status
	}

	expenses, err := s.repo.ListExpenses(r.Context(), userID(r), filter)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expensesToView(expenses))
}

// handleListPendingExpenses lists only the caller's not-yet-paid expenses.
func (s *Server) handleListPendingExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), userID(r), storage.ExpenseFilter{
		Status: core.StatusPending,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expensesToView(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	e, err := s.repo.ExpenseByID(r.Context(), userID(r), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenseToView(e))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	e, err := parseExpenseForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	owner := userID(r)
	if err := s.ensureOwnCategory(r, owner, e.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}
	created, err := s.repo.CreateExpense(r.Context(), owner, e)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	s.invalidateUserCaches(owner)
	s.notifier.ExpenseRecorded(r.Context(), owner, created.Date)
	redirectAfterMutation(w, r, "/expenses")
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	e, err := parseExpenseForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	e.ID = id

	owner := userID(r)
	if err := s.ensureOwnCategory(r, owner, e.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}
	if err := s.repo.UpdateExpense(r.Context(), owner, e); err != nil {
		respondStorageError(w, r, err)
		return
	}

	s.invalidateUserCaches(owner)
	s.notifier.ExpenseRecorded(r.Context(), owner, e.Date)
	redirectAfterMutation(w, r, "/expenses")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	owner := userID(r)
	if err := s.repo.DeleteExpense(r.Context(), owner, id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/expenses")
}
