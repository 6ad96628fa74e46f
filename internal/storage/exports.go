package storage

import (
	"context"
	"fmt"
	"time"

	"tally/internal/core"
)

// LogExport appends an audit record for a completed CSV export.
func (r *Repository) LogExport(ctx context.Context, ownerID int64) (core.ExportLog, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO export_logs (user_id, exported_at) VALUES (?, ?)`, ownerID, now)
	if err != nil {
		return core.ExportLog{}, fmt.Errorf("log export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ExportLog{}, fmt.Errorf("log export id: %w", err)
	}
	return core.ExportLog{ID: id, OwnerID: ownerID, ExportedAt: now}, nil
}

// ListExportLogs returns the owner's export history, newest first.
func (r *Repository) ListExportLogs(ctx context.Context, ownerID int64) ([]core.ExportLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, exported_at FROM export_logs
		 WHERE user_id = ? ORDER BY exported_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list export logs: %w", err)
	}
	defer rows.Close()

	var logs []core.ExportLog
	for rows.Next() {
		var l core.ExportLog
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.ExportedAt); err != nil {
			return nil, fmt.Errorf("scan export log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
