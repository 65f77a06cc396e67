package app

import (
	"context"
	"testing"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/report"
	"github.com/Latsika/AirportApp/internal/domain/settings"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"
	"github.com/Latsika/AirportApp/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(t *testing.T) (*AdminService, *fixture) {
	t.Helper()
	f := newFixture(t, mailEnv(), nil)
	return NewAdminService(f.users, f.reports, f.settings, testLogger()), f
}

func TestAdminCreateUser(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "  Jana Novakova  ", " jana ", user.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "Jana Novakova", u.FullName)
	assert.Equal(t, "jana", u.Nickname)
	assert.False(t, u.Approved)

	_, err = svc.CreateUser(ctx, "Jan Novak", "jana", user.RoleUser)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.CreateUser(ctx, "", "someone", user.RoleUser)
	assert.Error(t, err)
}

func TestAdminApproveUser(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "Jana Novakova", "jana", user.RoleUser)
	require.NoError(t, err)

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	approved, err := svc.ApproveUser(ctx, u.ID, 1, at)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	_, err = svc.ApproveUser(ctx, u.ID, 1, at)
	assert.ErrorIs(t, err, ErrUserAlreadyApproved)
}

func TestAdminRecordReportExportFeedsEvaluator(t *testing.T) {
	svc, f := newAdminService(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 15, 7, 30, 0, 0, f.loc)
	_, err := svc.RecordReportExport(ctx, report.KindDaily, "2024-03-15", "Total sales: 1240.50 EUR", at)
	require.NoError(t, err)

	events, err := f.evaluator.Evaluate(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, snapshot.KindDailyReportCreated, events[0].Kind)
}

func TestAdminUpdateRecipients(t *testing.T) {
	svc, f := newAdminService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateRecipients(ctx, []string{" boss@airport.test ", "", "deputy@airport.test"}))

	stored, err := f.settings.Recipients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"boss@airport.test", "deputy@airport.test"}, stored)

	tooMany := make([]string, settings.MaxRecipients+1)
	for i := range tooMany {
		tooMany[i] = "a@airport.test"
	}
	assert.ErrorIs(t, svc.UpdateRecipients(ctx, tooMany), ErrTooManyRecipients)
}

func TestAdminUpdateTemplateRejectsBadSyntax(t *testing.T) {
	svc, f := newAdminService(t)
	ctx := context.Background()

	err := svc.UpdateTemplate(ctx, snapshot.KindUserCreated, "Hello {{.fullname")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	require.NoError(t, svc.UpdateTemplate(ctx, snapshot.KindUserCreated, "Hello {{.fullname}}"))
	text, err := f.settings.Template(ctx, snapshot.KindUserCreated)
	require.NoError(t, err)
	assert.Equal(t, "Hello {{.fullname}}", text)
}

func TestAdminUpdateMailSettings(t *testing.T) {
	svc, f := newAdminService(t)
	ctx := context.Background()

	ms := &settings.MailSettings{Host: "mail.internal", Port: 2525, Username: "app", Password: "secret"}
	require.NoError(t, svc.UpdateMailSettings(ctx, ms))

	stored, err := f.settings.MailSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "mail.internal", stored.Host)
	assert.Equal(t, 2525, stored.Port)
}
