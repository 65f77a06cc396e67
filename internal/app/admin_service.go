package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/report"
	"github.com/Latsika/AirportApp/internal/domain/settings"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"
	"github.com/Latsika/AirportApp/internal/domain/user"
	idb "github.com/Latsika/AirportApp/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin operations
var ErrUserAlreadyExists = fmt.Errorf("user with this nickname already exists")
var ErrUserAlreadyApproved = fmt.Errorf("user is already approved")
var ErrTooManyRecipients = fmt.Errorf("recipient list exceeds the maximum of %d addresses", settings.MaxRecipients)
var ErrInvalidTemplate = fmt.Errorf("template text does not parse")

// AdminService handles the account lifecycle and the notification
// settings the dispatcher reads. Deleting an account writes a tombstone
// that the evaluator turns into a USER_DELETED event; creating one
// leaves it pending approval, which the evaluator turns into
// USER_CREATED.
type AdminService struct {
	users    user.Repository
	reports  report.Repository
	settings settings.Repository
	logger   *logrus.Logger
}

func NewAdminService(ur user.Repository, rr report.Repository, st settings.Repository, logger *logrus.Logger) *AdminService {
	return &AdminService{
		users:    ur,
		reports:  rr,
		settings: st,
		logger:   logger,
	}
}

// CreateUser registers a new account in pending-approval state.
func (s *AdminService) CreateUser(ctx context.Context, fullName, nickname string, role user.Role) (*user.User, error) {
	fullName = strings.TrimSpace(fullName)
	nickname = strings.TrimSpace(nickname)
	if fullName == "" || nickname == "" {
		return nil, fmt.Errorf("full name and nickname are required")
	}

	_, err := s.users.GetByNickname(ctx, nickname)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, idb.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	newUser := &user.User{
		FullName: fullName,
		Nickname: nickname,
		Role:     role,
		Approved: false,
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, idb.ErrNicknameTaken) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user": newUser.ID, "nickname": nickname}).Info("User created, pending approval.")
	return newUser, nil
}

// ApproveUser confirms a pending account.
func (s *AdminService) ApproveUser(ctx context.Context, userID, approverID int64, at time.Time) (*user.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.Approved {
		return target, ErrUserAlreadyApproved
	}
	if err := s.users.Approve(ctx, userID, approverID, at); err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"user": userID, "approver": approverID}).Info("User approved.")
	return s.users.GetByID(ctx, userID)
}

// DeleteUser removes the account and leaves a tombstone behind.
func (s *AdminService) DeleteUser(ctx context.Context, userID int64, at time.Time) error {
	if err := s.users.Delete(ctx, userID, at); err != nil {
		return err
	}
	s.logger.WithField("user", userID).Info("User deleted, tombstone written.")
	return nil
}

// RecordReportExport registers that a report export happened. Export
// actions call this before triggering a check point so the evaluator
// sees the fresh fact.
func (s *AdminService) RecordReportExport(ctx context.Context, kind report.Kind, periodKey, summary string, at time.Time) (*report.Export, error) {
	e := &report.Export{
		Kind:       kind,
		PeriodKey:  periodKey,
		Summary:    summary,
		ExportedAt: at,
	}
	if err := s.reports.RecordExport(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateRecipients replaces the notification recipient list.
func (s *AdminService) UpdateRecipients(ctx context.Context, recipients []string) error {
	cleaned := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) > settings.MaxRecipients {
		return ErrTooManyRecipients
	}
	return s.settings.SetRecipients(ctx, cleaned)
}

// UpdateTemplate stores template text for a condition kind. The text is
// parse-checked here so an admin typo is rejected at edit time instead
// of surfacing as a TemplateError on the next delivery.
func (s *AdminService) UpdateTemplate(ctx context.Context, kind snapshot.ConditionKind, text string) error {
	if _, err := template.New(string(kind)).Parse(text); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return s.settings.SetTemplate(ctx, kind, text)
}

// UpdateMailSettings stores SMTP credentials that override the
// environment configuration.
func (s *AdminService) UpdateMailSettings(ctx context.Context, ms *settings.MailSettings) error {
	return s.settings.SetMailSettings(ctx, ms)
}
