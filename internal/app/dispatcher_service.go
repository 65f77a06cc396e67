// internal/app/dispatcher_service.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/mail"
	"github.com/Latsika/AirportApp/internal/domain/popup"
	"github.com/Latsika/AirportApp/internal/domain/settings"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"

	"github.com/sirupsen/logrus"
)

// TemplateError reports a template that could not be rendered for a
// condition kind, usually a placeholder with no payload field. Fatal for
// that single event's email only; the popup falls back to plain text.
type TemplateError struct {
	Kind snapshot.ConditionKind
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template for %s: %v", e.Kind, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// DeliveryReport summarizes one dispatch pass.
type DeliveryReport struct {
	Attempted    int
	PopupQueued  int
	EmailSent    int
	EmailSkipped int
	Failures     []string
}

// DispatcherService drains pending snapshots into the two delivery
// channels. The popup queue is the reliable channel: a durable local
// write that is always attempted. Email is best-effort; a failed or
// skipped email never keeps a snapshot pending, otherwise a mail outage
// would turn into a resend storm.
type DispatcherService struct {
	snapshots     snapshot.Repository
	popups        popup.Repository
	settings      settings.Repository
	sender        mail.Sender
	envMail       settings.EnvMail
	envRecipients []string
	logger        *logrus.Logger
}

func NewDispatcherService(
	sr snapshot.Repository,
	pr popup.Repository,
	st settings.Repository,
	sender mail.Sender,
	envMail settings.EnvMail,
	envRecipients []string,
	logger *logrus.Logger,
) *DispatcherService {
	return &DispatcherService{
		snapshots:     sr,
		popups:        pr,
		settings:      st,
		sender:        sender,
		envMail:       envMail,
		envRecipients: envRecipients,
		logger:        logger,
	}
}

// DeliverPending processes every undelivered snapshot: render, popup,
// email attempt, then mark delivered. Storage failures abort the pass
// and leave the remaining snapshots pending for the next check point;
// marking is idempotent so partial passes are safe to retry.
func (d *DispatcherService) DeliverPending(ctx context.Context, at time.Time) (*DeliveryReport, error) {
	rep := &DeliveryReport{}

	pending, err := d.snapshots.PendingSince(ctx, nil, nil)
	if err != nil {
		return rep, fmt.Errorf("list pending snapshots: %w", err)
	}

	for _, snap := range pending {
		rep.Attempted++

		subject := subjectFor(snap)
		body, terr := d.render(ctx, snap)

		popupText := body
		if terr != nil {
			d.logger.WithError(terr).WithField("kind", snap.Kind).Error("Template rendering failed; popup uses fallback text, email skipped for this event.")
			rep.Failures = append(rep.Failures, terr.Error())
			popupText = fallbackText(snap)
		}

		if err := d.popups.Enqueue(ctx, &popup.Notification{
			SnapshotID: snap.ID,
			Title:      subject,
			Message:    popupText,
			CreatedAt:  at,
		}); err != nil {
			return rep, fmt.Errorf("enqueue popup for snapshot %d: %w", snap.ID, err)
		}
		rep.PopupQueued++

		if terr != nil {
			rep.EmailSkipped++
		} else if err := d.sendEmail(ctx, rep, snap, subject, body); err != nil {
			return rep, err
		}

		if err := d.snapshots.MarkDelivered(ctx, snap.ID, at); err != nil {
			return rep, fmt.Errorf("mark snapshot %d delivered: %w", snap.ID, err)
		}
	}

	return rep, nil
}

// sendEmail attempts best-effort delivery for one event. Only storage
// errors are returned; transport problems are logged, counted and
// swallowed.
func (d *DispatcherService) sendEmail(ctx context.Context, rep *DeliveryReport, snap *snapshot.Snapshot, subject, body string) error {
	stored, err := d.settings.MailSettings(ctx)
	if err != nil {
		return fmt.Errorf("read mail settings: %w", err)
	}

	cfg, ok := settings.ResolveMailConfig(stored, d.envMail)
	if !ok {
		// Expected configuration state, not an error.
		d.logger.Debug("No mail transport configured; email skipped.")
		rep.EmailSkipped++
		return nil
	}

	recipients, err := d.settings.Recipients(ctx)
	if err != nil {
		return fmt.Errorf("read recipient list: %w", err)
	}
	if len(recipients) == 0 {
		recipients = d.envRecipients
	}
	if len(recipients) == 0 {
		d.logger.Debug("No notification recipients configured; email skipped.")
		rep.EmailSkipped++
		return nil
	}

	sent := 0
	for _, rcpt := range recipients {
		rcpt = strings.TrimSpace(rcpt)
		if rcpt == "" {
			continue
		}
		if err := d.sender.Send(ctx, cfg, mail.Message{To: rcpt, Subject: subject, Body: body}); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"recipient": rcpt,
				"kind":      snap.Kind,
			}).Error("Email delivery failed; snapshot will still be marked delivered.")
			rep.Failures = append(rep.Failures, fmt.Sprintf("%s to %s: %v", snap.Kind, rcpt, err))
			continue
		}
		sent++
	}
	if sent > 0 {
		rep.EmailSent++
	}
	return nil
}

func (d *DispatcherService) render(ctx context.Context, snap *snapshot.Snapshot) (string, error) {
	text, err := d.settings.Template(ctx, snap.Kind)
	if err != nil {
		return "", fmt.Errorf("read template for %s: %w", snap.Kind, err)
	}
	if text == "" {
		text = defaultTemplates[snap.Kind]
	}
	if text == "" {
		return "", &TemplateError{Kind: snap.Kind, Err: fmt.Errorf("no template defined")}
	}

	tmpl, err := template.New(string(snap.Kind)).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", &TemplateError{Kind: snap.Kind, Err: err}
	}

	data := map[string]any{}
	if len(snap.Payload) > 0 {
		if err := json.Unmarshal(snap.Payload, &data); err != nil {
			return "", &TemplateError{Kind: snap.Kind, Err: fmt.Errorf("decode payload: %w", err)}
		}
	}
	data["period"] = snap.PeriodKey
	data["subject_id"] = snap.SubjectID

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{Kind: snap.Kind, Err: err}
	}
	return sb.String(), nil
}

var kindLabels = map[snapshot.ConditionKind]string{
	snapshot.KindUserCreated:          "New account pending approval",
	snapshot.KindUserDeleted:          "Account deleted",
	snapshot.KindDailyReportCreated:   "Daily report exported",
	snapshot.KindDailyReportMissing:   "Daily report missing",
	snapshot.KindMonthlyReportCreated: "Monthly report exported",
	snapshot.KindMonthlyReportMissing: "Monthly report missing",
	snapshot.KindRewardComputed:       "Variable reward finalized",
}

var defaultTemplates = map[snapshot.ConditionKind]string{
	snapshot.KindUserCreated: "A new account was created and is pending approval:\n\n" +
		"Full name: {{.fullname}}\nNickname: {{.nickname}}\n\n" +
		"Please log in to AirportApp and approve the user in Manage users.",
	snapshot.KindUserDeleted: "An account was deleted:\n\n" +
		"Full name: {{.fullname}}\nNickname: {{.nickname}}",
	snapshot.KindDailyReportCreated:   "The daily report for {{.period}} was exported.\n\n{{.summary}}",
	snapshot.KindDailyReportMissing:   "The daily report for {{.period}} has not been exported by {{.deadline}}.",
	snapshot.KindMonthlyReportCreated: "The monthly report for {{.period}} was exported.\n\n{{.summary}}",
	snapshot.KindMonthlyReportMissing: "The monthly report for {{.period}} has not been exported by {{.deadline}}.",
	snapshot.KindRewardComputed: "The variable reward for period {{.period}} was finalized: " +
		"{{printf \"%.2f\" .final}} EUR (computed: {{printf \"%.2f\" .computed}}).",
}

func subjectFor(snap *snapshot.Snapshot) string {
	label := kindLabels[snap.Kind]
	if label == "" {
		label = string(snap.Kind)
	}
	return fmt.Sprintf("AirportApp: %s (%s)", label, snap.PeriodKey)
}

func fallbackText(snap *snapshot.Snapshot) string {
	label := kindLabels[snap.Kind]
	if label == "" {
		label = string(snap.Kind)
	}
	if snap.SubjectID != snapshot.NoSubject {
		return fmt.Sprintf("%s for %s (user %d)", label, snap.PeriodKey, snap.SubjectID)
	}
	return fmt.Sprintf("%s for %s", label, snap.PeriodKey)
}
