// internal/domain/snapshot/snapshot.go
package snapshot

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ConditionKind is the enumerated category of trackable event.
type ConditionKind string

const (
	KindUserCreated          ConditionKind = "USER_CREATED"
	KindUserDeleted          ConditionKind = "USER_DELETED"
	KindDailyReportCreated   ConditionKind = "DAILY_REPORT_CREATED"
	KindDailyReportMissing   ConditionKind = "DAILY_REPORT_MISSING"
	KindMonthlyReportCreated ConditionKind = "MONTHLY_REPORT_CREATED"
	KindMonthlyReportMissing ConditionKind = "MONTHLY_REPORT_MISSING"
	KindRewardComputed       ConditionKind = "REWARD_COMPUTED"
)

// NoSubject is stored for conditions that are not scoped to a single user.
// SQLite unique indexes treat NULLs as distinct, so the dedup tuple
// (condition_kind, period_key, subject_id) must never contain NULL.
const NoSubject int64 = 0

// Snapshot is a durable, append-only record that a condition became true.
// It doubles as the dedup key and the delivery marker: a row with a NULL
// delivered_at is a pending event. Corresponds to the 'snapshots' table.
type Snapshot struct {
	ID          int64
	Kind        ConditionKind
	PeriodKey   string
	SubjectID   int64 // NoSubject when the condition has no subject
	Payload     json.RawMessage
	CreatedAt   time.Time
	DeliveredAt sql.NullTime // null means pending delivery
}

// Pending reports whether the snapshot has not been delivered yet.
func (s *Snapshot) Pending() bool {
	return !s.DeliveredAt.Valid
}
