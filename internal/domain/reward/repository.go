// internal/domain/reward/repository.go
package reward

import "context"

// OverrideRepository persists manual reward overrides.
type OverrideRepository interface {
	// Upsert inserts or replaces the override for (user, period).
	Upsert(ctx context.Context, o *Override) error
	Get(ctx context.Context, userID int64, periodKey string) (*Override, error)
	Delete(ctx context.Context, userID int64, periodKey string) error
}

// FeeSource provides monthly airport-fee totals per user. It is an
// external collaborator of the engine; computeReward is a pure function
// over its data.
type FeeSource interface {
	MonthlyTotal(ctx context.Context, userID int64, periodKey string) (float64, error)
}
