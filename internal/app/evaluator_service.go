// internal/app/evaluator_service.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/report"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"
	"github.com/Latsika/AirportApp/internal/domain/user"
	idb "github.com/Latsika/AirportApp/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// EvaluatorService runs the trigger rules at each check point. It diffs
// current facts against the snapshot store; only snapshots that are new
// become events. The evaluation instant and the reporting zone are
// explicit parameters so rules never touch the ambient clock.
type EvaluatorService struct {
	snapshots snapshot.Repository
	users     user.Repository
	reports   report.Source
	loc       *time.Location
	logger    *logrus.Logger
}

func NewEvaluatorService(
	sr snapshot.Repository,
	ur user.Repository,
	rs report.Source,
	loc *time.Location,
	logger *logrus.Logger,
) *EvaluatorService {
	return &EvaluatorService{
		snapshots: sr,
		users:     ur,
		reports:   rs,
		loc:       loc,
		logger:    logger,
	}
}

type userEventPayload struct {
	FullName string `json:"fullname"`
	Nickname string `json:"nickname"`
}

type reportEventPayload struct {
	Summary    string `json:"summary"`
	ExportedAt string `json:"exported_at"`
}

type missingEventPayload struct {
	Deadline string `json:"deadline"`
}

// Evaluate applies every trigger rule against the given instant and
// returns the snapshots created by this pass. Rules are independent;
// a storage failure aborts the remaining work for this check point and
// is surfaced. Unprocessed conditions are picked up next time.
func (s *EvaluatorService) Evaluate(ctx context.Context, at time.Time) ([]*snapshot.Snapshot, error) {
	var events []*snapshot.Snapshot

	record := func(kind snapshot.ConditionKind, periodKey string, subjectID int64, payload any) error {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", kind, err)
		}
		snap, wasNew, err := s.snapshots.RecordIfAbsent(ctx, kind, periodKey, subjectID, raw)
		if err != nil {
			return err
		}
		if wasNew {
			s.logger.WithFields(logrus.Fields{
				"kind":    kind,
				"period":  periodKey,
				"subject": subjectID,
			}).Info("Condition detected, snapshot recorded.")
			events = append(events, snap)
		}
		return nil
	}

	// USER_CREATED: accounts still waiting for approval.
	pending, err := s.users.ListPendingApproval(ctx)
	if err != nil {
		return events, fmt.Errorf("list pending users: %w", err)
	}
	for _, u := range pending {
		payload := userEventPayload{FullName: u.FullName, Nickname: u.Nickname}
		if err := record(snapshot.KindUserCreated, snapshot.DailyKey(u.CreatedAt, s.loc), u.ID, payload); err != nil {
			return events, err
		}
	}

	// USER_DELETED: driven by tombstones, never by row absence.
	tombstones, err := s.users.ListTombstones(ctx)
	if err != nil {
		return events, fmt.Errorf("list user tombstones: %w", err)
	}
	for _, t := range tombstones {
		payload := userEventPayload{FullName: t.FullName, Nickname: t.Nickname}
		if err := record(snapshot.KindUserDeleted, snapshot.DailyKey(t.DeletedAt, s.loc), t.UserID, payload); err != nil {
			return events, err
		}
	}

	todayKey := snapshot.DailyKey(at, s.loc)

	// DAILY_REPORT_CREATED: an export happened for today.
	if err := s.recordExportIfAny(ctx, record, report.KindDaily, snapshot.KindDailyReportCreated, todayKey); err != nil {
		return events, err
	}

	// DAILY_REPORT_MISSING: past the deadline with no CREATED snapshot
	// for today. Suppression is a store query, not in-memory state, so a
	// CREATED snapshot recorded by this same pass suppresses correctly.
	if snapshot.DeadlinePassed(at, s.loc) {
		created, err := s.snapshots.Exists(ctx, snapshot.KindDailyReportCreated, todayKey, snapshot.NoSubject)
		if err != nil {
			return events, err
		}
		if !created {
			payload := missingEventPayload{Deadline: fmt.Sprintf("%02d:00", snapshot.DeadlineHour)}
			if err := record(snapshot.KindDailyReportMissing, todayKey, snapshot.NoSubject, payload); err != nil {
				return events, err
			}
		}
	}

	// MONTHLY_REPORT_CREATED: current and previous month. Older exports
	// were snapshotted by earlier check points; the store is the log.
	monthKey := snapshot.MonthlyKey(at, s.loc)
	prevMonthKey := snapshot.PreviousMonthKey(at, s.loc)
	for _, key := range []string{monthKey, prevMonthKey} {
		if err := s.recordExportIfAny(ctx, record, report.KindMonthly, snapshot.KindMonthlyReportCreated, key); err != nil {
			return events, err
		}
	}

	// MONTHLY_REPORT_MISSING: first of month, past the deadline, and the
	// previous month was never exported.
	if snapshot.FirstOfMonth(at, s.loc) && snapshot.DeadlinePassed(at, s.loc) {
		created, err := s.snapshots.Exists(ctx, snapshot.KindMonthlyReportCreated, prevMonthKey, snapshot.NoSubject)
		if err != nil {
			return events, err
		}
		if !created {
			payload := missingEventPayload{Deadline: fmt.Sprintf("%02d:00", snapshot.DeadlineHour)}
			if err := record(snapshot.KindMonthlyReportMissing, prevMonthKey, snapshot.NoSubject, payload); err != nil {
				return events, err
			}
		}
	}

	// REWARD_COMPUTED snapshots are produced by the reward finalization
	// flow through the same RecordIfAbsent path; nothing to poll here.

	return events, nil
}

func (s *EvaluatorService) recordExportIfAny(
	ctx context.Context,
	record func(snapshot.ConditionKind, string, int64, any) error,
	reportKind report.Kind,
	conditionKind snapshot.ConditionKind,
	periodKey string,
) error {
	exp, err := s.reports.LatestExport(ctx, reportKind, periodKey)
	if errors.Is(err, idb.ErrExportNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up %s export for %s: %w", reportKind, periodKey, err)
	}
	payload := reportEventPayload{
		Summary:    exp.Summary,
		ExportedAt: exp.ExportedAt.UTC().Format(time.RFC3339),
	}
	return record(conditionKind, periodKey, snapshot.NoSubject, payload)
}
