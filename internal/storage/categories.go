package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/core"
)

// CreateCategory inserts a category owned by ownerID.
func (r *Repository) CreateCategory(ctx context.Context, ownerID int64, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, icon) VALUES (?, ?, ?)`,
		ownerID, c.Name, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}
	c.ID = id
	c.OwnerID = ownerID
	return c, nil
}

// CategoryByID fetches one owned category.
func (r *Repository) CategoryByID(ctx context.Context, ownerID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, icon FROM categories WHERE id = ? AND user_id = ?`, id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the owner's categories by name.
func (r *Repository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, icon FROM categories WHERE user_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// UpdateCategory overwrites name and icon of an owned category.
func (r *Repository) UpdateCategory(ctx context.Context, ownerID int64, c core.Category) error {
	err := execOwned(ctx, r.db,
		`UPDATE categories SET name = ?, icon = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.ID, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update category: %w", err)
	}
	return err
}

// DeleteCategory removes an owned category. Referencing expenses and
// recurring expenses keep their rows with a nulled category (ON DELETE SET
// NULL); budgets on the category are removed (ON DELETE CASCADE).
func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	err := execOwned(ctx, r.db,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete category: %w", err)
	}
	return err
}
