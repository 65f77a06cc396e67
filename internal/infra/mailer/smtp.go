// internal/infra/mailer/smtp.go
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/mail"
	"github.com/Latsika/AirportApp/internal/domain/settings"
)

// SMTPSender implements the mail.Sender interface over plain SMTP with
// STARTTLS. Every call dials fresh; notification volume is a handful of
// messages per day, so connection reuse buys nothing.
type SMTPSender struct {
	timeout time.Duration
}

func NewSMTPSender(timeout time.Duration) *SMTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPSender{timeout: timeout}
}

// Send delivers one message to one recipient. The connection deadline
// bounds the whole exchange so a hung server cannot stall the dispatch
// pass beyond the configured timeout.
func (s *SMTPSender) Send(ctx context.Context, cfg settings.MailConfig, msg mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if err = conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("set connection deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if cfg.Username != "" && cfg.Password != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err = client.Mail(cfg.Sender); err != nil {
		return fmt.Errorf("mail from %s: %w", cfg.Sender, err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		cfg.Sender, msg.To, msg.Subject, msg.Body)
	if _, err = w.Write([]byte(payload)); err != nil {
		return fmt.Errorf("write message body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}
