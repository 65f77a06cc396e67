// internal/infra/database/sqlite_settings_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Latsika/AirportApp/internal/domain/settings"
	"github.com/Latsika/AirportApp/internal/domain/snapshot"
)

// Settings live in the app_settings key/value table:
//
//	notify_recipients      JSON array of addresses
//	notify_template:<kind> raw template text
//	mail_settings          JSON MailSettings
type SQLiteSettingsRepository struct {
	db *sql.DB
}

func NewSQLiteSettingsRepository(db *sql.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{db: db}
}

const (
	keyRecipients     = "notify_recipients"
	keyTemplatePrefix = "notify_template:"
	keyMailSettings   = "mail_settings"
)

func (r *SQLiteSettingsRepository) getValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading setting %q: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteSettingsRepository) setValue(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("error writing setting %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteSettingsRepository) Recipients(ctx context.Context) ([]string, error) {
	raw, ok, err := r.getValue(ctx, keyRecipients)
	if err != nil || !ok {
		return nil, err
	}
	var recipients []string
	if err := json.Unmarshal([]byte(raw), &recipients); err != nil {
		return nil, fmt.Errorf("error decoding recipient list: %w", err)
	}
	return recipients, nil
}

func (r *SQLiteSettingsRepository) SetRecipients(ctx context.Context, recipients []string) error {
	raw, err := json.Marshal(recipients)
	if err != nil {
		return fmt.Errorf("error encoding recipient list: %w", err)
	}
	return r.setValue(ctx, keyRecipients, string(raw))
}

func (r *SQLiteSettingsRepository) Template(ctx context.Context, kind snapshot.ConditionKind) (string, error) {
	raw, _, err := r.getValue(ctx, keyTemplatePrefix+string(kind))
	return raw, err
}

func (r *SQLiteSettingsRepository) SetTemplate(ctx context.Context, kind snapshot.ConditionKind, text string) error {
	return r.setValue(ctx, keyTemplatePrefix+string(kind), text)
}

func (r *SQLiteSettingsRepository) MailSettings(ctx context.Context) (*settings.MailSettings, error) {
	raw, ok, err := r.getValue(ctx, keyMailSettings)
	if err != nil || !ok {
		return nil, err
	}
	var ms settings.MailSettings
	if err := json.Unmarshal([]byte(raw), &ms); err != nil {
		return nil, fmt.Errorf("error decoding mail settings: %w", err)
	}
	return &ms, nil
}

func (r *SQLiteSettingsRepository) SetMailSettings(ctx context.Context, ms *settings.MailSettings) error {
	raw, err := json.Marshal(ms)
	if err != nil {
		return fmt.Errorf("error encoding mail settings: %w", err)
	}
	return r.setValue(ctx, keyMailSettings, string(raw))
}
