package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// CreateUser inserts a new user row. Duplicate usernames or emails surface
// as ErrAlreadyExists.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrAlreadyExists
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	return core.User{ID: id, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// UserByUsername fetches a user by username.
func (r *Repository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// UserByID fetches a user by id.
func (r *Repository) UserByID(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UpdateUserEmail changes a user's email address.
func (r *Repository) UpdateUserEmail(ctx context.Context, userID int64, email string) error {
	err := execOwned(ctx, r.db, `UPDATE users SET email = ? WHERE id = ?`, email, userID)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update user email: %w", err)
	}
	return err
}

// ProfileFor returns the user's profile, creating it with defaults on first
// access.
func (r *Repository) ProfileFor(ctx context.Context, userID int64) (core.Profile, error) {
	var p core.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, role, currency FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Role, &p.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		p = core.Profile{UserID: userID, Role: "User", Currency: "€"}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO profiles (user_id, role, currency) VALUES (?, ?, ?)`,
			p.UserID, p.Role, p.Currency)
		if err != nil {
			// Lost a race with a concurrent first access; read the winner.
			if isUniqueViolation(err) {
				return r.ProfileFor(ctx, userID)
			}
			return core.Profile{}, fmt.Errorf("create profile: %w", err)
		}
		return p, nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpdateProfileCurrency changes the display currency on the user's profile.
func (r *Repository) UpdateProfileCurrency(ctx context.Context, userID int64, currency string) error {
	if _, err := r.ProfileFor(ctx, userID); err != nil {
		return err
	}
	if err := execOwned(ctx, r.db,
		`UPDATE profiles SET currency = ? WHERE user_id = ?`, currency, userID); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
