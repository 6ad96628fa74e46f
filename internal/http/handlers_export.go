package http

import (
	"log/slog"
	"net/http"

	"tally/internal/export"
)

// handleExportExpenses streams the user's full expense history as CSV, in
// insertion order. Every download is recorded in the export log.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)
	expenses, err := s.repo.ExpensesInInsertionOrder(r.Context(), owner)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := export.WriteCSV(w, expenses); err != nil {
		// Headers are gone; all we can do is log.
		slog.ErrorContext(r.Context(), "CSV write failed", "user_id", owner, "error", err)
		return
	}

	if _, err := s.repo.LogExport(r.Context(), owner); err != nil {
		slog.ErrorContext(r.Context(), "Export logging failed", "user_id", owner, "error", err)
	}
	s.notifier.ExportCompleted(r.Context(), owner, len(expenses))
}
