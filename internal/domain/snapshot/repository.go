// internal/domain/snapshot/repository.go
package snapshot

import (
	"context"
	"encoding/json"
	"time"
)

// Repository defines the durable snapshot store. All writes must be
// durable before the call returns: the engine keeps no in-memory state
// between "condition detected" and "delivered".
type Repository interface {
	// RecordIfAbsent atomically inserts a snapshot keyed by
	// (kind, periodKey, subjectID). When a row for the tuple already
	// exists the existing row is returned with wasNew=false; that is the
	// normal idempotent path, not an error.
	RecordIfAbsent(ctx context.Context, kind ConditionKind, periodKey string, subjectID int64, payload json.RawMessage) (snap *Snapshot, wasNew bool, err error)

	// MarkDelivered sets delivered_at. It is a no-op (not an error) if
	// the snapshot is already marked, to tolerate duplicate dispatch
	// attempts.
	MarkDelivered(ctx context.Context, id int64, deliveredAt time.Time) error

	// PendingSince lists undelivered snapshots oldest first, optionally
	// filtered by kind and by creation instant.
	PendingSince(ctx context.Context, kind *ConditionKind, before *time.Time) ([]*Snapshot, error)

	// Exists reports whether a snapshot for the tuple exists,
	// regardless of delivery state. Drives *_CREATED suppression of
	// *_MISSING rules.
	Exists(ctx context.Context, kind ConditionKind, periodKey string, subjectID int64) (bool, error)

	// GetByKey fetches the snapshot for a tuple.
	GetByKey(ctx context.Context, kind ConditionKind, periodKey string, subjectID int64) (*Snapshot, error)

	// ListByKindAndPeriod lists all snapshots of a kind for a period,
	// ordered by subject. Backs the reward export views.
	ListByKindAndPeriod(ctx context.Context, kind ConditionKind, periodKey string) ([]*Snapshot, error)

	// ReplacePayload overwrites a snapshot's payload. The only sanctioned
	// caller is the explicit reward recompute action; everything else
	// treats snapshots as append-only.
	ReplacePayload(ctx context.Context, id int64, payload json.RawMessage) error
}
