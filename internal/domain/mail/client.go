package mail

import (
	"context"

	"github.com/Latsika/AirportApp/internal/domain/settings"
)

// Message is one email to one recipient. The dispatcher sends one
// message per recipient so that a refused or timed-out recipient never
// blocks delivery attempts to the others.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender defines an interface for delivering email messages. This keeps
// the application logic decoupled from the SMTP implementation.
type Sender interface {
	Send(ctx context.Context, cfg settings.MailConfig, msg Message) error
}
