package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/settings"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSnapshot(t *testing.T, f *fixture, kind snapshot.ConditionKind, periodKey string, subjectID int64, payload string) *snapshot.Snapshot {
	t.Helper()
	snap, wasNew, err := f.snapshots.RecordIfAbsent(context.Background(), kind, periodKey, subjectID, json.RawMessage(payload))
	require.NoError(t, err)
	require.True(t, wasNew)
	return snap
}

func TestDeliverPendingWithoutMailTransport(t *testing.T) {
	f := newFixture(t, settings.EnvMail{}, nil)
	ctx := context.Background()

	seedSnapshot(t, f, snapshot.KindDailyReportMissing, "2024-03-15", snapshot.NoSubject, `{"deadline":"08:00"}`)
	seedSnapshot(t, f, snapshot.KindUserCreated, "2024-03-15", 3, `{"fullname":"Jana Novakova","nickname":"jana"}`)

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	rep, err := f.dispatcher.DeliverPending(ctx, at)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Attempted)
	assert.Equal(t, 2, rep.PopupQueued)
	assert.Equal(t, 2, rep.EmailSkipped, "no transport means every email is skipped, never failed")
	assert.Zero(t, rep.EmailSent)
	assert.Empty(t, rep.Failures)
	assert.Empty(t, f.sender.messages())

	// Skipped email never keeps a snapshot pending.
	pending, err := f.snapshots.PendingSince(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pending)

	unread, err := f.popups.ListUnread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Contains(t, unread[0].Message, "08:00")
	assert.Contains(t, unread[1].Message, "Jana Novakova")
}

func TestDeliverPendingSendsEmailPerRecipient(t *testing.T) {
	f := newFixture(t, mailEnv(), []string{"boss@airport.test", "deputy@airport.test"})
	ctx := context.Background()

	seedSnapshot(t, f, snapshot.KindDailyReportMissing, "2024-03-15", snapshot.NoSubject, `{"deadline":"08:00"}`)

	rep, err := f.dispatcher.DeliverPending(ctx, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, rep.EmailSent)
	msgs := f.sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "boss@airport.test", msgs[0].To)
	assert.Equal(t, "deputy@airport.test", msgs[1].To)
	assert.Equal(t, msgs[0].Subject, msgs[1].Subject)
	assert.Contains(t, msgs[0].Subject, "2024-03-15")
	assert.Contains(t, msgs[0].Body, "08:00")
}

func TestDeliverPendingStoredRecipientsWinOverEnv(t *testing.T) {
	f := newFixture(t, mailEnv(), []string{"env@airport.test"})
	ctx := context.Background()

	require.NoError(t, f.settings.SetRecipients(ctx, []string{"stored@airport.test"}))
	seedSnapshot(t, f, snapshot.KindUserDeleted, "2024-03-20", 5, `{"fullname":"Jana Novakova","nickname":"jana"}`)

	_, err := f.dispatcher.DeliverPending(ctx, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "stored@airport.test", msgs[0].To)
}

func TestDeliverPendingRecipientFailureIsIsolated(t *testing.T) {
	f := newFixture(t, mailEnv(), []string{"down@airport.test", "up@airport.test"})
	f.sender.failTo = map[string]error{"down@airport.test": errors.New("connection refused")}
	ctx := context.Background()

	snap := seedSnapshot(t, f, snapshot.KindDailyReportMissing, "2024-03-15", snapshot.NoSubject, `{"deadline":"08:00"}`)

	rep, err := f.dispatcher.DeliverPending(ctx, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, rep.EmailSent, "one accepted recipient counts the event as sent")
	require.Len(t, rep.Failures, 1)
	assert.Contains(t, rep.Failures[0], "down@airport.test")

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "up@airport.test", msgs[0].To)

	// The failed recipient does not keep the snapshot pending.
	got, err := f.snapshots.GetByKey(ctx, snap.Kind, snap.PeriodKey, snap.SubjectID)
	require.NoError(t, err)
	assert.False(t, got.Pending())
}

func TestDeliverPendingBadTemplateFallsBack(t *testing.T) {
	f := newFixture(t, mailEnv(), []string{"boss@airport.test"})
	ctx := context.Background()

	// Admin-saved template references a placeholder the payload lacks.
	require.NoError(t, f.settings.SetTemplate(ctx, snapshot.KindUserCreated, "Welcome {{.no_such_field}}"))

	seedSnapshot(t, f, snapshot.KindUserCreated, "2024-03-15", 3, `{"fullname":"Jana Novakova","nickname":"jana"}`)
	seedSnapshot(t, f, snapshot.KindDailyReportMissing, "2024-03-15", snapshot.NoSubject, `{"deadline":"08:00"}`)

	rep, err := f.dispatcher.DeliverPending(ctx, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Attempted)
	assert.Equal(t, 2, rep.PopupQueued, "the broken template still produces a popup")
	assert.Equal(t, 1, rep.EmailSkipped)
	assert.Equal(t, 1, rep.EmailSent, "the healthy event is unaffected")
	require.Len(t, rep.Failures, 1)

	// Only the healthy event reached the mail channel.
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "08:00")

	// Both are delivered; the broken one carries fallback popup text.
	pending, err := f.snapshots.PendingSince(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pending)

	unread, err := f.popups.ListUnread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Contains(t, unread[0].Message, "New account pending approval")
}

func TestDeliverPendingCustomTemplate(t *testing.T) {
	f := newFixture(t, settings.EnvMail{}, nil)
	ctx := context.Background()

	require.NoError(t, f.settings.SetTemplate(ctx, snapshot.KindDailyReportMissing,
		"Report for {{.period}} missed the {{.deadline}} deadline."))
	seedSnapshot(t, f, snapshot.KindDailyReportMissing, "2024-03-15", snapshot.NoSubject, `{"deadline":"08:00"}`)

	_, err := f.dispatcher.DeliverPending(ctx, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	unread, err := f.popups.ListUnread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Report for 2024-03-15 missed the 08:00 deadline.", unread[0].Message)
}
