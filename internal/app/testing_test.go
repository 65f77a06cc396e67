package app

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/mail"
	"github.com/Latsika/AirportApp/internal/domain/settings"
	idb "github.com/Latsika/AirportApp/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func reportingZone(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Bratislava")
	require.NoError(t, err)
	return loc
}

// fakeSender records outgoing messages and can be told to refuse
// individual recipients.
type fakeSender struct {
	mu     sync.Mutex
	sent   []mail.Message
	failTo map[string]error
}

func (f *fakeSender) Send(_ context.Context, _ settings.MailConfig, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

// fixture wires the services against a real temp-file database, the way
// main does, with the SMTP transport replaced by fakeSender.
type fixture struct {
	snapshots  *idb.SQLiteSnapshotRepository
	users      *idb.SQLiteUserRepository
	reports    *idb.SQLiteReportRepository
	settings   *idb.SQLiteSettingsRepository
	popups     *idb.SQLitePopupRepository
	rewards    *idb.SQLiteRewardRepository
	sender     *fakeSender
	loc        *time.Location
	evaluator  *EvaluatorService
	dispatcher *DispatcherService
	engine     *EngineService
}

func newFixture(t *testing.T, envMail settings.EnvMail, envRecipients []string) *fixture {
	t.Helper()

	db, err := idb.NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		snapshots: idb.NewSQLiteSnapshotRepository(db),
		users:     idb.NewSQLiteUserRepository(db),
		reports:   idb.NewSQLiteReportRepository(db),
		settings:  idb.NewSQLiteSettingsRepository(db),
		popups:    idb.NewSQLitePopupRepository(db),
		rewards:   idb.NewSQLiteRewardRepository(db),
		sender:    &fakeSender{},
		loc:       reportingZone(t),
	}

	log := testLogger()
	f.evaluator = NewEvaluatorService(f.snapshots, f.users, f.reports, f.loc, log)
	f.dispatcher = NewDispatcherService(f.snapshots, f.popups, f.settings, f.sender, envMail, envRecipients, log)
	f.engine = NewEngineService(f.evaluator, f.dispatcher, f.popups, log)
	return f
}

// mailEnv is a minimal working transport configuration for tests that
// exercise the email channel.
func mailEnv() settings.EnvMail {
	return settings.EnvMail{Host: "smtp.test", Port: 2525, Username: "app", Password: "pw"}
}
