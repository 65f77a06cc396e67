// internal/domain/report/repository.go
package report

import "context"

// Source is the read side consumed by the trigger evaluator.
type Source interface {
	// LatestExport returns the most recent export for (kind, period).
	LatestExport(ctx context.Context, kind Kind, periodKey string) (*Export, error)
}

// Repository adds the write side used by the export actions.
type Repository interface {
	Source
	RecordExport(ctx context.Context, e *Export) error
}
