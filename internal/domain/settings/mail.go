// internal/domain/settings/mail.go
package settings

import "strings"

// EnvMail is the environment-level mail transport configuration, used
// only when Account Settings stores no credentials.
type EnvMail struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// MailConfig is the resolved transport the dispatcher hands to the
// sender.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// DefaultSMTPPort is the submission port used when none is configured.
const DefaultSMTPPort = 587

// ResolveMailConfig applies the resolution order: stored settings first,
// environment second. Returns ok=false when neither source yields a
// usable transport (no host, or no sender identity). That is an
// expected configuration state, not an error.
func ResolveMailConfig(stored *MailSettings, env EnvMail) (MailConfig, bool) {
	if stored != nil && strings.TrimSpace(stored.Host) != "" {
		cfg := MailConfig{
			Host:     strings.TrimSpace(stored.Host),
			Port:     stored.Port,
			Username: stored.Username,
			Password: stored.Password,
			Sender:   strings.TrimSpace(stored.Sender),
		}
		if cfg.Port == 0 {
			cfg.Port = DefaultSMTPPort
		}
		if cfg.Sender == "" {
			cfg.Sender = cfg.Username
		}
		if cfg.Sender == "" {
			return MailConfig{}, false
		}
		return cfg, true
	}

	if strings.TrimSpace(env.Host) == "" {
		return MailConfig{}, false
	}
	cfg := MailConfig{
		Host:     strings.TrimSpace(env.Host),
		Port:     env.Port,
		Username: env.Username,
		Password: env.Password,
		Sender:   strings.TrimSpace(env.Sender),
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.Sender == "" {
		cfg.Sender = cfg.Username
	}
	if cfg.Sender == "" {
		return MailConfig{}, false
	}
	return cfg, true
}
