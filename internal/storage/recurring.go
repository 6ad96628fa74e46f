package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/core"
)

const recurringColumns = `re.id, re.user_id, re.category_id, COALESCE(c.name, ''), re.title, re.amount_cents, re.cycle, re.next_date`

// CreateRecurringExpense inserts a recurring expense template owned by
// ownerID. An empty cycle falls back to Monthly.
func (r *Repository) CreateRecurringExpense(ctx context.Context, ownerID int64, re core.RecurringExpense) (core.RecurringExpense, error) {
	if re.Cycle == "" {
		re.Cycle = core.CycleMonthly
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_expenses (user_id, category_id, title, amount_cents, cycle, next_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, nullableID(re.CategoryID), re.Title, re.Amount.Cents, re.Cycle, re.NextDate.ISO())
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("create recurring expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("create recurring expense id: %w", err)
	}
	re.ID = id
	re.OwnerID = ownerID
	return re, nil
}

// RecurringExpenseByID fetches one owned recurring expense.
func (r *Repository) RecurringExpenseByID(ctx context.Context, ownerID, id int64) (core.RecurringExpense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+`
		 FROM recurring_expenses re LEFT JOIN categories c ON c.id = re.category_id
		 WHERE re.id = ? AND re.user_id = ?`, id, ownerID)
	return scanRecurring(row)
}

// ListRecurringExpenses returns the owner's recurring expenses by next due
// date.
func (r *Repository) ListRecurringExpenses(ctx context.Context, ownerID int64) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+`
		 FROM recurring_expenses re LEFT JOIN categories c ON c.id = re.category_id
		 WHERE re.user_id = ?
		 ORDER BY re.next_date, re.id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// UpdateRecurringExpense overwrites all mutable fields of an owned template.
func (r *Repository) UpdateRecurringExpense(ctx context.Context, ownerID int64, re core.RecurringExpense) error {
	if re.Cycle == "" {
		re.Cycle = core.CycleMonthly
	}
	err := execOwned(ctx, r.db,
		`UPDATE recurring_expenses SET category_id = ?, title = ?, amount_cents = ?, cycle = ?, next_date = ?
		 WHERE id = ? AND user_id = ?`,
		nullableID(re.CategoryID), re.Title, re.Amount.Cents, re.Cycle, re.NextDate.ISO(), re.ID, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update recurring expense: %w", err)
	}
	return err
}

// DeleteRecurringExpense removes an owned template.
func (r *Repository) DeleteRecurringExpense(ctx context.Context, ownerID, id int64) error {
	err := execOwned(ctx, r.db,
		`DELETE FROM recurring_expenses WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	return err
}

// DueRecurringExpenses returns every template, across all users, whose
// next_date is on or before asOf. The recurring worker is the only caller;
// it materializes each hit under its own owner, so the ownership guard on
// the request paths is not bypassed.
func (r *Repository) DueRecurringExpenses(ctx context.Context, asOf core.Date) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+`
		 FROM recurring_expenses re LEFT JOIN categories c ON c.id = re.category_id
		 WHERE re.next_date <= ?
		 ORDER BY re.next_date, re.id`, asOf.ISO())
	if err != nil {
		return nil, fmt.Errorf("due recurring expenses: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// AdvanceRecurringNextDate moves a template's next_date forward after
// materialization.
func (r *Repository) AdvanceRecurringNextDate(ctx context.Context, id int64, next core.Date) error {
	err := execOwned(ctx, r.db,
		`UPDATE recurring_expenses SET next_date = ? WHERE id = ?`, next.ISO(), id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("advance recurring next date: %w", err)
	}
	return err
}

func scanRecurring(row rowScanner) (core.RecurringExpense, error) {
	var (
		re    core.RecurringExpense
		catID sql.NullInt64
		next  string
	)
	err := row.Scan(&re.ID, &re.OwnerID, &catID, &re.CategoryName, &re.Title, &re.Amount.Cents, &re.Cycle, &next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.RecurringExpense{}, ErrNotFound
		}
		return core.RecurringExpense{}, fmt.Errorf("scan recurring expense: %w", err)
	}
	if catID.Valid {
		re.CategoryID = &catID.Int64
	}
	if re.NextDate, err = core.ParseDate(next); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("parse next date %q: %w", next, err)
	}
	return re, nil
}

func collectRecurring(rows *sql.Rows) ([]core.RecurringExpense, error) {
	var templates []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, re)
	}
	return templates, rows.Err()
}
