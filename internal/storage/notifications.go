package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// CreateNotification inserts a notification for ownerID. created_at is set
// here and never touched again.
func (r *Repository) CreateNotification(ctx context.Context, ownerID int64, message, icon string) (core.Notification, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message, icon, created_at, is_read) VALUES (?, ?, ?, ?, 0)`,
		ownerID, message, icon, now)
	if err != nil {
		return core.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Notification{}, fmt.Errorf("create notification id: %w", err)
	}
	return core.Notification{ID: id, OwnerID: ownerID, Message: message, Icon: icon, CreatedAt: now}, nil
}

// ListNotifications returns the owner's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, ownerID int64) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, icon, created_at, is_read
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notes []core.Notification
	for rows.Next() {
		var n core.Notification
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Message, &n.Icon, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UnreadNotificationCount counts the owner's unread notifications.
func (r *Repository) UnreadNotificationCount(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}
	return n, nil
}

// ToggleNotificationRead flips the read flag of an owned notification.
func (r *Repository) ToggleNotificationRead(ctx context.Context, ownerID, id int64) error {
	err := execOwned(ctx, r.db,
		`UPDATE notifications SET is_read = NOT is_read WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("toggle notification read: %w", err)
	}
	return err
}

// MarkAllNotificationsRead sets is_read on every notification of the owner.
// Marking an empty set is not an error.
func (r *Repository) MarkAllNotificationsRead(ctx context.Context, ownerID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ?`, ownerID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
