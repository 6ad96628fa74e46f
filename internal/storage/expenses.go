package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// ExpenseFilter narrows ListExpenses. Zero values mean "no filter".
type ExpenseFilter struct {
	// Search is matched as a substring against title, the 2dp amount
	// string, the ISO date, and the category name (logical OR).
	Search     string
	CategoryID int64
	Status     core.ExpenseStatus
}

const expenseColumns = `e.id, e.user_id, e.category_id, COALESCE(c.name, ''), e.title, e.amount_cents, e.date, e.note, e.status`

// CreateExpense inserts an expense owned by ownerID.
func (r *Repository) CreateExpense(ctx context.Context, ownerID int64, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, title, amount_cents, date, note, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID, nullableID(e.CategoryID), e.Title, e.Amount.Cents, e.Date.ISO(), e.Note, string(e.Status), time.Now().UTC())
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense id: %w", err)
	}
	e.ID = id
	e.OwnerID = ownerID
	return e, nil
}

// ExpenseByID fetches one expense; rows owned by other users read as absent.
func (r *Repository) ExpenseByID(ctx context.Context, ownerID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.id = ? AND e.user_id = ?`, id, ownerID)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// UpdateExpense overwrites all mutable fields of an owned expense.
func (r *Repository) UpdateExpense(ctx context.Context, ownerID int64, e core.Expense) error {
	err := execOwned(ctx, r.db,
		`UPDATE expenses SET category_id = ?, title = ?, amount_cents = ?, date = ?, note = ?, status = ?
		 WHERE id = ? AND user_id = ?`,
		nullableID(e.CategoryID), e.Title, e.Amount.Cents, e.Date.ISO(), e.Note, string(e.Status), e.ID, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update expense: %w", err)
	}
	return err
}

// DeleteExpense removes an owned expense permanently.
func (r *Repository) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	err := execOwned(ctx, r.db,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete expense: %w", err)
	}
	return err
}

// ListExpenses returns the owner's expenses, newest date first.
func (r *Repository) ListExpenses(ctx context.Context, ownerID int64, f ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ?`
	args := []any{ownerID}

	if f.Search != "" {
		// The amount match compares against the rendered decimal, the way
		// a user sees it.
		query += ` AND (e.title LIKE ? ESCAPE '\'
			OR printf('%d.%02d', e.amount_cents / 100, e.amount_cents % 100) LIKE ? ESCAPE '\'
			OR e.date LIKE ? ESCAPE '\'
			OR COALESCE(c.name, '') LIKE ? ESCAPE '\')`
		pat := "%" + escapeLike(f.Search) + "%"
		args = append(args, pat, pat, pat, pat)
	}
	if f.CategoryID != 0 {
		query += ` AND e.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Status != "" {
		query += ` AND e.status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY e.date DESC, e.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// RecentExpenses returns the owner's latest expenses for the dashboard.
func (r *Repository) RecentExpenses(ctx context.Context, ownerID int64, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ?
		 ORDER BY e.date DESC, e.id DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ExpensesInInsertionOrder returns all of the owner's expenses ordered by id,
// the order the CSV export emits.
func (r *Repository) ExpensesInInsertionOrder(ctx context.Context, ownerID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ?
		 ORDER BY e.id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("expenses for export: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// DailySpend sums PAID amounts on one date. No expenses means zero, not an
// error.
func (r *Repository) DailySpend(ctx context.Context, ownerID int64, date core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND date = ? AND status = ?`,
		ownerID, date.ISO(), string(core.StatusPaid)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("daily spend: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// MonthlySpend sums PAID amounts on or after monthStart. PAID-only is applied
// uniformly; the report view uses the same figure as the dashboard.
func (r *Repository) MonthlySpend(ctx context.Context, ownerID int64, monthStart core.Date) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE user_id = ? AND date >= ? AND status = ?`,
		ownerID, monthStart.ISO(), string(core.StatusPaid)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly spend: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// TopCategories groups PAID spend since monthStart by category name, largest
// first, so per-category totals never exceed the MonthlySpend figure.
// Uncategorized expenses group under the empty name. Tie order between equal
// totals is whatever SQLite returns.
func (r *Repository) TopCategories(ctx context.Context, ownerID int64, monthStart core.Date, limit int) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(c.name, ''), SUM(e.amount_cents) AS total
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ? AND e.date >= ? AND e.status = ?
		 GROUP BY COALESCE(c.name, '')
		 ORDER BY total DESC
		 LIMIT ?`, ownerID, monthStart.ISO(), string(core.StatusPaid), limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Name, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// escapeLike escapes LIKE metacharacters so search terms match literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e     core.Expense
		catID sql.NullInt64
		date  string
	)
	err := row.Scan(&e.ID, &e.OwnerID, &catID, &e.CategoryName, &e.Title, &e.Amount.Cents, &date, &e.Note, &e.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	if catID.Valid {
		e.CategoryID = &catID.Int64
	}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
