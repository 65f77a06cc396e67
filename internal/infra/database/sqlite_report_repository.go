// internal/infra/database/sqlite_report_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/report"
)

var ErrExportNotFound = fmt.Errorf("report export not found")

type SQLiteReportRepository struct {
	db *sql.DB
}

func NewSQLiteReportRepository(db *sql.DB) *SQLiteReportRepository {
	return &SQLiteReportRepository{db: db}
}

func (r *SQLiteReportRepository) RecordExport(ctx context.Context, e *report.Export) error {
	if e.ExportedAt.IsZero() {
		e.ExportedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO report_exports (kind, period_key, summary, exported_at_utc)
		 VALUES (?, ?, ?, ?)`,
		e.Kind, e.PeriodKey, e.Summary, formatTime(e.ExportedAt))
	if err != nil {
		return fmt.Errorf("error recording report export: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading export id: %w", err)
	}
	return nil
}

func (r *SQLiteReportRepository) LatestExport(ctx context.Context, kind report.Kind, periodKey string) (*report.Export, error) {
	var (
		e          report.Export
		exportedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, kind, period_key, summary, exported_at_utc FROM report_exports
		 WHERE kind = ? AND period_key = ?
		 ORDER BY exported_at_utc DESC, id DESC LIMIT 1`,
		kind, periodKey).Scan(&e.ID, &e.Kind, &e.PeriodKey, &e.Summary, &exportedAt)
	if err == sql.ErrNoRows {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting latest report export: %w", err)
	}
	if e.ExportedAt, err = parseTime(exportedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
