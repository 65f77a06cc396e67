// internal/domain/reward/reward.go
package reward

import "time"

// Override is a manual per-user amount that supersedes the computed
// variable reward for one period. The computed amount is still retained
// in the reward snapshot payload for audit.
type Override struct {
	ID        int64
	UserID    int64
	PeriodKey string
	Amount    float64
	CreatedAt time.Time
}

// Payload is the opaque payload stored in a REWARD_COMPUTED snapshot.
// Amounts are EUR, matching the airline fee schema.
type Payload struct {
	Computed float64  `json:"computed"`
	Override *float64 `json:"override,omitempty"`
	Final    float64  `json:"final"`
}

// Finalized is a reward snapshot resolved into its payload, as returned
// by finalize and by the export views.
type Finalized struct {
	SnapshotID int64
	UserID     int64
	PeriodKey  string
	Payload    Payload
	CreatedAt  time.Time
}
