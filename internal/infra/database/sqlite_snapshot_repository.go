// internal/infra/database/sqlite_snapshot_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/snapshot"
)

// Custom errors specific to the snapshot repository
var ErrSnapshotNotFound = fmt.Errorf("snapshot not found")

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

const snapshotColumns = `id, condition_kind, period_key, subject_id, payload, created_at_utc, delivered_at_utc`

func scanSnapshot(row interface{ Scan(...any) error }) (*snapshot.Snapshot, error) {
	var (
		s           snapshot.Snapshot
		payload     string
		createdAt   string
		deliveredAt sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Kind, &s.PeriodKey, &s.SubjectID, &payload, &createdAt, &deliveredAt); err != nil {
		return nil, err
	}
	s.Payload = json.RawMessage(payload)

	var err error
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if deliveredAt.Valid {
		t, err := parseTime(deliveredAt.String)
		if err != nil {
			return nil, err
		}
		s.DeliveredAt = sql.NullTime{Time: t, Valid: true}
	}
	return &s, nil
}

// RecordIfAbsent inserts the snapshot unless the dedup tuple already
// exists. The unique index on (condition_kind, period_key, subject_id)
// is the serialization point for concurrent callers; losing the race is
// the normal idempotent path.
func (r *SQLiteSnapshotRepository) RecordIfAbsent(ctx context.Context, kind snapshot.ConditionKind, periodKey string, subjectID int64, payload json.RawMessage) (*snapshot.Snapshot, bool, error) {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	createdAt := formatTime(time.Now())

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (condition_kind, period_key, subject_id, payload, created_at_utc)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(condition_kind, period_key, subject_id) DO NOTHING`,
		kind, periodKey, subjectID, string(payload), createdAt)
	if err != nil {
		return nil, false, fmt.Errorf("error recording snapshot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("error reading insert result: %w", err)
	}

	existing, err := r.GetByKey(ctx, kind, periodKey, subjectID)
	if err != nil {
		return nil, false, err
	}
	return existing, affected > 0, nil
}

// MarkDelivered sets delivered_at once. Rows already marked are left
// untouched so duplicate dispatch attempts are harmless.
func (r *SQLiteSnapshotRepository) MarkDelivered(ctx context.Context, id int64, deliveredAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE snapshots SET delivered_at_utc = ? WHERE id = ? AND delivered_at_utc IS NULL`,
		formatTime(deliveredAt), id)
	if err != nil {
		return fmt.Errorf("error marking snapshot delivered: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepository) PendingSince(ctx context.Context, kind *snapshot.ConditionKind, before *time.Time) ([]*snapshot.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE delivered_at_utc IS NULL`
	args := make([]any, 0, 2)
	if kind != nil {
		query += ` AND condition_kind = ?`
		args = append(args, *kind)
	}
	if before != nil {
		query += ` AND created_at_utc < ?`
		args = append(args, formatTime(*before))
	}
	query += ` ORDER BY created_at_utc ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying pending snapshots: %w", err)
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

func (r *SQLiteSnapshotRepository) Exists(ctx context.Context, kind snapshot.ConditionKind, periodKey string, subjectID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM snapshots WHERE condition_kind = ? AND period_key = ? AND subject_id = ?`,
		kind, periodKey, subjectID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking snapshot existence: %w", err)
	}
	return true, nil
}

func (r *SQLiteSnapshotRepository) GetByKey(ctx context.Context, kind snapshot.ConditionKind, periodKey string, subjectID int64) (*snapshot.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE condition_kind = ? AND period_key = ? AND subject_id = ?`,
		kind, periodKey, subjectID)
	s, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting snapshot by key: %w", err)
	}
	return s, nil
}

func (r *SQLiteSnapshotRepository) ListByKindAndPeriod(ctx context.Context, kind snapshot.ConditionKind, periodKey string) ([]*snapshot.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots
		 WHERE condition_kind = ? AND period_key = ? ORDER BY subject_id ASC`,
		kind, periodKey)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots by kind and period: %w", err)
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

// ReplacePayload overwrites the stored payload. Reserved for the
// explicit reward recompute action.
func (r *SQLiteSnapshotRepository) ReplacePayload(ctx context.Context, id int64, payload json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE snapshots SET payload = ? WHERE id = ?`, string(payload), id)
	if err != nil {
		return fmt.Errorf("error replacing snapshot payload: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading update result: %w", err)
	}
	if affected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func collectSnapshots(rows *sql.Rows) ([]*snapshot.Snapshot, error) {
	snaps := make([]*snapshot.Snapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning snapshot row: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snaps, nil
}
