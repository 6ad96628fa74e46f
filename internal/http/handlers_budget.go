package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tally/internal/core"
)

// parseBudgetForm reads the category/amount/month triple shared by the
// budget mutation handlers.
func parseBudgetForm(form url.Values) (core.Budget, error) {
	categoryID, err := strconv.ParseInt(strings.TrimSpace(form.Get("category_id")), 10, 64)
	if err != nil || categoryID <= 0 {
		return core.Budget{}, errBadID
	}
	amount, err := parseAmount(form, "amount")
	if err != nil {
		return core.Budget{}, err
	}
	month, err := parseMonth(form.Get("month"))
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{CategoryID: categoryID, Amount: amount, Month: month}
	return b, b.Validate()
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month")
		return
	}

	budgets, err := s.repo.ListBudgets(r.Context(), userID(r), month)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetToView(b))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleSetBudget creates or replaces the month's budget row. One row per
// user and month is kept; a second submit for the same month overwrites the
// amount and category.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	b, err := parseBudgetForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	owner := userID(r)
	// The category must belong to the caller before it can carry a budget.
	if err := s.ensureOwnCategory(r, owner, &b.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}

	if _, err := s.repo.SetBudget(r.Context(), owner, b.CategoryID, b.Amount, b.Month); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/budgets")
}

// handleCreateBudget adds a budget row without the one-per-month collapsing
// of handleSetBudget, so a month can carry several per-category budgets.
func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	b, err := parseBudgetForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	owner := userID(r)
	if err := s.ensureOwnCategory(r, owner, &b.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}
	if _, err := s.repo.CreateBudget(r.Context(), owner, b); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/budgets")
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	b, err := parseBudgetForm(r.Form)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.ID = id

	owner := userID(r)
	if err := s.ensureOwnCategory(r, owner, &b.CategoryID); err != nil {
		respondStorageError(w, r, err)
		return
	}
	if err := s.repo.UpdateBudget(r.Context(), owner, b); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/budgets")
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	owner := userID(r)
	if err := s.repo.DeleteBudget(r.Context(), owner, id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateUserCaches(owner)
	redirectAfterMutation(w, r, "/budgets")
}
