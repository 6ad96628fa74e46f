package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/core"
)

// CreateGoal inserts a savings goal owned by ownerID.
func (r *Repository) CreateGoal(ctx context.Context, ownerID int64, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, title, target_cents, progress_cents, deadline) VALUES (?, ?, ?, ?, ?)`,
		ownerID, g.Title, g.Target.Cents, g.Progress.Cents, g.Deadline.ISO())
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal id: %w", err)
	}
	g.ID = id
	g.OwnerID = ownerID
	return g, nil
}

// GoalByID fetches one owned goal.
func (r *Repository) GoalByID(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, target_cents, progress_cents, deadline
		 FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanGoal(row)
}

// ListGoals returns the owner's goals by deadline.
func (r *Repository) ListGoals(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, target_cents, progress_cents, deadline
		 FROM goals WHERE user_id = ? ORDER BY deadline, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal overwrites all mutable fields of an owned goal. Progress is
// whatever the user reports; expense activity never moves it.
func (r *Repository) UpdateGoal(ctx context.Context, ownerID int64, g core.Goal) error {
	err := execOwned(ctx, r.db,
		`UPDATE goals SET title = ?, target_cents = ?, progress_cents = ?, deadline = ?
		 WHERE id = ? AND user_id = ?`,
		g.Title, g.Target.Cents, g.Progress.Cents, g.Deadline.ISO(), g.ID, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update goal: %w", err)
	}
	return err
}

// DeleteGoal removes an owned goal.
func (r *Repository) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	err := execOwned(ctx, r.db,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete goal: %w", err)
	}
	return err
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g        core.Goal
		deadline string
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Target.Cents, &g.Progress.Cents, &deadline)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, ErrNotFound
		}
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	if g.Deadline, err = core.ParseDate(deadline); err != nil {
		return core.Goal{}, fmt.Errorf("parse goal deadline %q: %w", deadline, err)
	}
	return g, nil
}
