package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMailConfigPrefersStoredSettings(t *testing.T) {
	stored := &MailSettings{Host: "mail.internal", Port: 2525, Username: "app", Password: "secret"}
	env := EnvMail{Host: "smtp.example.com", Port: 587, Username: "envuser", Sender: "env@example.com"}

	cfg, ok := ResolveMailConfig(stored, env)

	assert.True(t, ok)
	assert.Equal(t, "mail.internal", cfg.Host)
	assert.Equal(t, 2525, cfg.Port)
	assert.Equal(t, "app", cfg.Sender, "sender defaults to username")
}

func TestResolveMailConfigFallsBackToEnv(t *testing.T) {
	env := EnvMail{Host: "smtp.example.com", Username: "envuser", Password: "pw"}

	cfg, ok := ResolveMailConfig(nil, env)

	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com", cfg.Host)
	assert.Equal(t, DefaultSMTPPort, cfg.Port)
	assert.Equal(t, "envuser", cfg.Sender)
}

func TestResolveMailConfigEmptyStoredHostFallsThrough(t *testing.T) {
	stored := &MailSettings{Host: "   "}
	env := EnvMail{Host: "smtp.example.com", Sender: "alerts@example.com"}

	cfg, ok := ResolveMailConfig(stored, env)

	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com", cfg.Host)
}

func TestResolveMailConfigNoneConfigured(t *testing.T) {
	_, ok := ResolveMailConfig(nil, EnvMail{})
	assert.False(t, ok)

	// A host without any sender identity is unusable.
	_, ok = ResolveMailConfig(nil, EnvMail{Host: "smtp.example.com"})
	assert.False(t, ok)
}
