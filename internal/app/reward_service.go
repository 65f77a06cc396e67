// internal/app/reward_service.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Latsika/AirportApp/internal/domain/reward"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"
	idb "github.com/Latsika/AirportApp/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// RewardService computes variable rewards, applies manual overrides and
// snapshots the result so later recomputation never silently changes
// history. Exports read snapshot rows only; the figures a user sees in
// an export are exactly the figures that were (or will be) notified.
type RewardService struct {
	snapshots snapshot.Repository
	overrides reward.OverrideRepository
	fees      reward.FeeSource
	logger    *logrus.Logger
}

func NewRewardService(
	sr snapshot.Repository,
	or reward.OverrideRepository,
	fs reward.FeeSource,
	logger *logrus.Logger,
) *RewardService {
	return &RewardService{
		snapshots: sr,
		overrides: or,
		fees:      fs,
		logger:    logger,
	}
}

// ComputeReward derives the variable reward from monthly fee data. Pure
// read, no side effects.
func (s *RewardService) ComputeReward(ctx context.Context, userID int64, periodKey string) (float64, error) {
	return s.fees.MonthlyTotal(ctx, userID, periodKey)
}

// FinalizeReward computes the amount, applies an override if present and
// records the REWARD_COMPUTED snapshot. Idempotent: a second call for
// the same (user, period) returns the stored snapshot unchanged, even if
// fee data or overrides have changed since. Concurrent finalize calls
// serialize on the snapshot store's uniqueness invariant.
func (s *RewardService) FinalizeReward(ctx context.Context, userID int64, periodKey string) (*reward.Finalized, error) {
	payload, err := s.buildPayload(ctx, userID, periodKey)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode reward payload: %w", err)
	}

	snap, wasNew, err := s.snapshots.RecordIfAbsent(ctx, snapshot.KindRewardComputed, periodKey, userID, raw)
	if err != nil {
		return nil, err
	}
	if wasNew {
		s.logger.WithFields(logrus.Fields{
			"user":   userID,
			"period": periodKey,
			"final":  payload.Final,
		}).Info("Reward finalized and snapshotted.")
	}
	return finalizedFromSnapshot(snap)
}

// Recompute rebuilds the payload from current fee data and overrides and
// replaces the stored snapshot payload. This is the explicit action the
// UI gates behind confirmation; it is the only path that mutates reward
// history. Falls back to a plain finalize when no snapshot exists yet.
func (s *RewardService) Recompute(ctx context.Context, userID int64, periodKey string) (*reward.Finalized, error) {
	snap, err := s.snapshots.GetByKey(ctx, snapshot.KindRewardComputed, periodKey, userID)
	if errors.Is(err, idb.ErrSnapshotNotFound) {
		return s.FinalizeReward(ctx, userID, periodKey)
	}
	if err != nil {
		return nil, err
	}

	payload, err := s.buildPayload(ctx, userID, periodKey)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode reward payload: %w", err)
	}
	if err := s.snapshots.ReplacePayload(ctx, snap.ID, raw); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user":   userID,
		"period": periodKey,
		"final":  payload.Final,
	}).Info("Reward snapshot recomputed.")

	snap.Payload = raw
	return finalizedFromSnapshot(snap)
}

// GetFinalized returns the finalized reward for one user, reading the
// snapshot only.
func (s *RewardService) GetFinalized(ctx context.Context, userID int64, periodKey string) (*reward.Finalized, error) {
	snap, err := s.snapshots.GetByKey(ctx, snapshot.KindRewardComputed, periodKey, userID)
	if err != nil {
		return nil, err
	}
	return finalizedFromSnapshot(snap)
}

// ListFinalized backs the full-list export for a period.
func (s *RewardService) ListFinalized(ctx context.Context, periodKey string) ([]*reward.Finalized, error) {
	snaps, err := s.snapshots.ListByKindAndPeriod(ctx, snapshot.KindRewardComputed, periodKey)
	if err != nil {
		return nil, err
	}
	out := make([]*reward.Finalized, 0, len(snaps))
	for _, snap := range snaps {
		f, err := finalizedFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// SetOverride registers a manual amount for (user, period). It never
// touches an existing snapshot; the admin must trigger Recompute for the
// override to take effect on finalized history.
func (s *RewardService) SetOverride(ctx context.Context, userID int64, periodKey string, amount float64) error {
	return s.overrides.Upsert(ctx, &reward.Override{
		UserID:    userID,
		PeriodKey: periodKey,
		Amount:    amount,
	})
}

func (s *RewardService) ClearOverride(ctx context.Context, userID int64, periodKey string) error {
	return s.overrides.Delete(ctx, userID, periodKey)
}

func (s *RewardService) buildPayload(ctx context.Context, userID int64, periodKey string) (reward.Payload, error) {
	computed, err := s.fees.MonthlyTotal(ctx, userID, periodKey)
	if err != nil {
		return reward.Payload{}, fmt.Errorf("compute reward for user %d period %s: %w", userID, periodKey, err)
	}

	payload := reward.Payload{Computed: computed, Final: computed}
	override, err := s.overrides.Get(ctx, userID, periodKey)
	if err != nil && !errors.Is(err, idb.ErrOverrideNotFound) {
		return reward.Payload{}, err
	}
	if override != nil {
		amount := override.Amount
		payload.Override = &amount
		payload.Final = amount
	}
	return payload, nil
}

func finalizedFromSnapshot(snap *snapshot.Snapshot) (*reward.Finalized, error) {
	var payload reward.Payload
	if err := json.Unmarshal(snap.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode reward payload for snapshot %d: %w", snap.ID, err)
	}
	return &reward.Finalized{
		SnapshotID: snap.ID,
		UserID:     snap.SubjectID,
		PeriodKey:  snap.PeriodKey,
		Payload:    payload,
		CreatedAt:  snap.CreatedAt,
	}, nil
}
