// internal/infra/database/sqlite_reward_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/reward"
)

var ErrOverrideNotFound = fmt.Errorf("reward override not found")

// SQLiteRewardRepository implements both reward.OverrideRepository and
// reward.FeeSource: overrides are owned by this engine, fee totals are
// written by the sales-entry surface and only read here.
type SQLiteRewardRepository struct {
	db *sql.DB
}

func NewSQLiteRewardRepository(db *sql.DB) *SQLiteRewardRepository {
	return &SQLiteRewardRepository{db: db}
}

func (r *SQLiteRewardRepository) Upsert(ctx context.Context, o *reward.Override) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reward_overrides (user_id, period_key, amount, created_at_utc)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, period_key) DO UPDATE SET amount = excluded.amount`,
		o.UserID, o.PeriodKey, o.Amount, formatTime(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("error upserting reward override: %w", err)
	}
	return nil
}

func (r *SQLiteRewardRepository) Get(ctx context.Context, userID int64, periodKey string) (*reward.Override, error) {
	var (
		o         reward.Override
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, period_key, amount, created_at_utc
		 FROM reward_overrides WHERE user_id = ? AND period_key = ?`,
		userID, periodKey).Scan(&o.ID, &o.UserID, &o.PeriodKey, &o.Amount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting reward override: %w", err)
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *SQLiteRewardRepository) Delete(ctx context.Context, userID int64, periodKey string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM reward_overrides WHERE user_id = ? AND period_key = ?`, userID, periodKey)
	if err != nil {
		return fmt.Errorf("error deleting reward override: %w", err)
	}
	return nil
}

// MonthlyTotal implements reward.FeeSource. A user without fee rows for
// the period has a zero total, not an error.
func (r *SQLiteRewardRepository) MonthlyTotal(ctx context.Context, userID int64, periodKey string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM monthly_fee_totals
		 WHERE user_id = ? AND period_key = ?`,
		userID, periodKey).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("error computing monthly fee total: %w", err)
	}
	return total, nil
}

// RecordFeeTotal upserts a user's fee total for a period. Used by the
// sales-entry surface and by tests to seed fact data.
func (r *SQLiteRewardRepository) RecordFeeTotal(ctx context.Context, userID int64, periodKey string, amount float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_fee_totals (user_id, period_key, amount, updated_at_utc)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, period_key) DO UPDATE SET amount = excluded.amount, updated_at_utc = excluded.updated_at_utc`,
		userID, periodKey, amount, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("error recording monthly fee total: %w", err)
	}
	return nil
}
