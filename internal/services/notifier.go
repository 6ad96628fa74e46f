// Package services holds the orchestration between storage and the
// notification event bus.
package services

import (
	"context"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// EventPublisher publishes notification events. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.Event) error
}

// Notifier watches for notification-worthy activity and publishes events.
// Publishing never fails a request: with no publisher configured it is a
// no-op, and publish errors are logged and swallowed.
type Notifier struct {
	repo      *storage.Repository
	publisher EventPublisher
}

func NewNotifier(repo *storage.Repository, publisher EventPublisher) *Notifier {
	return &Notifier{repo: repo, publisher: publisher}
}

// ExpenseRecorded checks the month the expense landed in and raises a budget
// alert when its spend now exceeds the month's total budget.
func (n *Notifier) ExpenseRecorded(ctx context.Context, ownerID int64, date core.Date) {
	if n == nil || n.publisher == nil {
		return
	}
	month := date.MonthStart()

	budget, err := n.repo.TotalBudget(ctx, ownerID, month)
	if err != nil {
		slog.ErrorContext(ctx, "Budget lookup for alert failed", "user_id", ownerID, "error", err)
		return
	}
	if budget.Cents == 0 {
		return
	}
	spent, err := n.repo.MonthlySpend(ctx, ownerID, month)
	if err != nil {
		slog.ErrorContext(ctx, "Spend lookup for alert failed", "user_id", ownerID, "error", err)
		return
	}
	if spent.Cents <= budget.Cents {
		return
	}

	ev := amqp.NewBudgetAlert(ownerID, month.ISO(), spent.Cents, budget.Cents)
	if err := n.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"user_id", ownerID, "month", month.ISO(), "error", err)
	}
}

// ExportCompleted raises an export-completed event.
func (n *Notifier) ExportCompleted(ctx context.Context, ownerID int64, rows int) {
	if n == nil || n.publisher == nil {
		return
	}
	if err := n.publisher.PublishEvent(ctx, amqp.NewExportCompleted(ownerID, rows)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export event",
			"user_id", ownerID, "error", err)
	}
}
