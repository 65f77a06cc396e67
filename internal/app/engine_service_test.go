package app

import (
	"context"
	"testing"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndNotifyEndToEnd(t *testing.T) {
	f := newFixture(t, mailEnv(), []string{"boss@airport.test"})
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &user.User{FullName: "Jana Novakova", Nickname: "jana", Role: user.RoleUser}))

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, f.loc)
	summary, err := f.engine.CheckAndNotify(ctx, at)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.NewEvents, "USER_CREATED and DAILY_REPORT_MISSING")
	require.NotNil(t, summary.Delivery)
	assert.Equal(t, 2, summary.Delivery.PopupQueued)
	assert.Equal(t, 2, summary.Delivery.EmailSent)
	assert.Len(t, summary.Unread, 2)
	assert.Len(t, f.sender.messages(), 2)
}

func TestCheckAndNotifySecondPassIsQuiet(t *testing.T) {
	f := newFixture(t, mailEnv(), []string{"boss@airport.test"})
	ctx := context.Background()

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, f.loc)
	first, err := f.engine.CheckAndNotify(ctx, at)
	require.NoError(t, err)
	require.Equal(t, 1, first.NewEvents)

	// Re-running with nothing changed detects nothing, sends nothing,
	// but still surfaces the unread popups from the first pass.
	second, err := f.engine.CheckAndNotify(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, second.NewEvents)
	assert.Zero(t, second.Delivery.Attempted)
	assert.Len(t, second.Unread, 1)
	assert.Len(t, f.sender.messages(), 1, "no duplicate email")
}

func TestAcknowledgePopups(t *testing.T) {
	f := newFixture(t, mailEnv(), nil)
	ctx := context.Background()

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, f.loc)
	summary, err := f.engine.CheckAndNotify(ctx, at)
	require.NoError(t, err)
	require.Len(t, summary.Unread, 1)

	require.NoError(t, f.engine.AcknowledgePopups(ctx, []int64{summary.Unread[0].ID}, at.Add(time.Minute)))

	next, err := f.engine.CheckAndNotify(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, next.Unread)
}
