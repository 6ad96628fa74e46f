package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

// RecurringProcessor materializes due recurring templates into expenses.
type RecurringProcessor struct {
	repo     *storage.Repository
	notifier *Notifier
}

func NewRecurringProcessor(repo *storage.Repository, notifier *Notifier) *RecurringProcessor {
	return &RecurringProcessor{repo: repo, notifier: notifier}
}

// ProcessDue creates one expense for every template whose next_date has
// arrived and advances the template by one cycle. Each run advances a
// template at most one step; a long-overdue template catches up across
// successive runs. Returns the number of expenses created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	asOf := core.NewDate(now.Year(), int(now.Month()), now.Day())
	due, err := p.repo.DueRecurringExpenses(ctx, asOf)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, rec := range due {
		next, ok := advanceCycle(rec.NextDate, rec.Cycle)
		if !ok {
			slog.WarnContext(ctx, "Skipping recurring template with unknown cycle",
				"recurring_id", rec.ID, "cycle", rec.Cycle)
			continue
		}

		exp := core.Expense{
			Title:      rec.Title,
			Amount:     rec.Amount,
			CategoryID: rec.CategoryID,
			Date:       rec.NextDate,
			Status:     core.StatusPaid,
		}
		if _, err := p.repo.CreateExpense(ctx, rec.OwnerID, exp); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring expense",
				"recurring_id", rec.ID, "error", err)
			continue
		}
		if err := p.repo.AdvanceRecurringNextDate(ctx, rec.ID, next); err != nil {
			slog.ErrorContext(ctx, "Failed to advance recurring template",
				"recurring_id", rec.ID, "error", err)
			continue
		}
		created++
		p.notifier.ExpenseRecorded(ctx, rec.OwnerID, exp.Date)
	}
	return created, nil
}

// advanceCycle returns the date one cycle after d. Unknown cycles report
// ok=false so the caller can leave the template untouched.
func advanceCycle(d core.Date, cycle string) (core.Date, bool) {
	switch {
	case strings.EqualFold(cycle, core.CycleDaily):
		return core.Date{Time: d.AddDate(0, 0, 1)}, true
	case strings.EqualFold(cycle, core.CycleWeekly):
		return core.Date{Time: d.AddDate(0, 0, 7)}, true
	case strings.EqualFold(cycle, core.CycleMonthly):
		return core.Date{Time: d.AddDate(0, 1, 0)}, true
	case strings.EqualFold(cycle, core.CycleYearly):
		return core.Date{Time: d.AddDate(1, 0, 0)}, true
	}
	return core.Date{}, false
}
