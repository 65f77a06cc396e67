// internal/domain/settings/settings.go
package settings

import (
	"context"

	"github.com/Latsika/AirportApp/internal/domain/snapshot"
)

// MaxRecipients caps the notification recipient list.
const MaxRecipients = 10

// MailSettings are the optional SMTP credentials stored in Account
// Settings. When present (Host non-empty) they override the
// environment-level mail configuration.
type MailSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Sender   string `json:"sender"`
}

// Repository persists process-wide notification settings: the recipient
// list, per-condition template text and optional mail credentials.
// The dispatcher reads them on each delivery pass, so admin edits take
// effect without a restart.
type Repository interface {
	Recipients(ctx context.Context) ([]string, error)
	SetRecipients(ctx context.Context, recipients []string) error

	// Template returns the stored template text for a condition kind, or
	// "" when the built-in default should be used.
	Template(ctx context.Context, kind snapshot.ConditionKind) (string, error)
	SetTemplate(ctx context.Context, kind snapshot.ConditionKind, text string) error

	// MailSettings returns nil when no credentials are stored.
	MailSettings(ctx context.Context) (*MailSettings, error)
	SetMailSettings(ctx context.Context, ms *MailSettings) error
}
