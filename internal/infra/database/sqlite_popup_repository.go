// internal/infra/database/sqlite_popup_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/popup"
)

type SQLitePopupRepository struct {
	db *sql.DB
}

func NewSQLitePopupRepository(db *sql.DB) *SQLitePopupRepository {
	return &SQLitePopupRepository{db: db}
}

func (r *SQLitePopupRepository) Enqueue(ctx context.Context, n *popup.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO popup_notifications (snapshot_id, title, message, created_at_utc)
		 VALUES (?, ?, ?, ?)`,
		n.SnapshotID, n.Title, n.Message, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("error enqueueing popup notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading popup id: %w", err)
	}
	return nil
}

func (r *SQLitePopupRepository) ListUnread(ctx context.Context) ([]*popup.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, snapshot_id, title, message, created_at_utc, read_at_utc
		 FROM popup_notifications WHERE read_at_utc IS NULL
		 ORDER BY created_at_utc ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing unread popups: %w", err)
	}
	defer rows.Close()

	items := make([]*popup.Notification, 0)
	for rows.Next() {
		var (
			n         popup.Notification
			createdAt string
			readAt    sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.SnapshotID, &n.Title, &n.Message, &createdAt, &readAt); err != nil {
			return nil, fmt.Errorf("error scanning popup row: %w", err)
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popup rows: %w", err)
	}
	return items, nil
}

func (r *SQLitePopupRepository) MarkRead(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, formatTime(at))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE popup_notifications SET read_at_utc = ?
		 WHERE id IN (`+placeholders+`) AND read_at_utc IS NULL`, args...)
	if err != nil {
		return fmt.Errorf("error marking popups read: %w", err)
	}
	return nil
}
