package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabasePath string `env:"AIRPORT_DB_PATH" envDefault:"airport_app.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Environment  string `env:"ENVIRONMENT" envDefault:"development"`

	// ReportTimezone is the single named zone all deadline comparisons
	// use, independent of the process time zone.
	ReportTimezone string `env:"REPORT_TIMEZONE" envDefault:"Europe/Bratislava"`

	// CronMorningCheck schedules the daily check point that notices
	// missed report deadlines even when nobody opens the app.
	CronMorningCheck string `env:"CRON_MORNING_CHECK" envDefault:"0 8 * * *"`

	// Environment-level mail transport, used only when Account Settings
	// stores no credentials. Empty SMTPHost means email is skipped.
	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string        `env:"SMTP_USER"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPFrom     string        `env:"SMTP_FROM"`
	MailTimeout  time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`

	// AdminNotifyEmails is the fallback recipient list when Account
	// Settings has none.
	AdminNotifyEmails []string `env:"ADMIN_NOTIFY_EMAILS" envSeparator:","`
}

// Load reads configuration from environment variables and .env file (if
// present). godotenv will not override existing env variables.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment config: %w", err)
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	return cfg, nil
}
