package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/core"
)

const budgetColumns = `b.id, b.user_id, b.category_id, COALESCE(c.name, ''), b.amount_cents, b.month`

// CreateBudget inserts a budget owned by ownerID.
func (r *Repository) CreateBudget(ctx context.Context, ownerID int64, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount_cents, month) VALUES (?, ?, ?, ?)`,
		ownerID, b.CategoryID, b.Amount.Cents, b.Month.ISO())
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget id: %w", err)
	}
	b.ID = id
	b.OwnerID = ownerID
	return b, nil
}

// BudgetByID fetches one owned budget.
func (r *Repository) BudgetByID(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets b JOIN categories c ON c.id = b.category_id
		 WHERE b.id = ? AND b.user_id = ?`, id, ownerID)
	return scanBudget(row)
}

// ListBudgets returns the owner's budgets for one month.
func (r *Repository) ListBudgets(ctx context.Context, ownerID int64, month core.Date) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets b JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ? AND b.month = ?
		 ORDER BY c.name`, ownerID, month.ISO())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// UpdateBudget overwrites category, amount and month of an owned budget.
func (r *Repository) UpdateBudget(ctx context.Context, ownerID int64, b core.Budget) error {
	err := execOwned(ctx, r.db,
		`UPDATE budgets SET category_id = ?, amount_cents = ?, month = ? WHERE id = ? AND user_id = ?`,
		b.CategoryID, b.Amount.Cents, b.Month.ISO(), b.ID, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update budget: %w", err)
	}
	return err
}

// DeleteBudget removes an owned budget.
func (r *Repository) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	err := execOwned(ctx, r.db,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete budget: %w", err)
	}
	return err
}

// TotalBudget sums the owner's budgets for one month.
func (r *Repository) TotalBudget(ctx context.Context, ownerID int64, month core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM budgets WHERE user_id = ? AND month = ?`,
		ownerID, month.ISO()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total budget: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// SetBudget upserts the owner's budget for the month. The lookup is keyed on
// (owner, month) only and deliberately ignores the category: a second call in
// the same month updates the existing row instead of adding one, whatever
// category it names. Returns true when a new row was created.
func (r *Repository) SetBudget(ctx context.Context, ownerID, categoryID int64, amount core.Money, month core.Date) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("set budget: begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE user_id = ? AND month = ? LIMIT 1`,
		ownerID, month.ISO()).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category_id, amount_cents, month) VALUES (?, ?, ?, ?)`,
			ownerID, categoryID, amount.Cents, month.ISO()); err != nil {
			return false, fmt.Errorf("set budget: insert: %w", err)
		}
		return true, tx.Commit()
	case err != nil:
		return false, fmt.Errorf("set budget: lookup: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE budgets SET category_id = ?, amount_cents = ? WHERE id = ?`,
			categoryID, amount.Cents, id); err != nil {
			return false, fmt.Errorf("set budget: update: %w", err)
		}
		return false, tx.Commit()
	}
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b     core.Budget
		month string
	)
	err := row.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.CategoryName, &b.Amount.Cents, &month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, ErrNotFound
		}
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	if b.Month, err = core.ParseDate(month); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget month %q: %w", month, err)
	}
	return b, nil
}
