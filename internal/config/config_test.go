package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Telegram: TelegramConfig{
			Token:            "123:abc",
			AllowedUsernames: "Alice, bob",
		},
		Claude: ClaudeConfig{
			APIKey: "sk-test",
			Model:  "claude-test",
		},
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing telegram token", func(c *Config) { c.Telegram.Token = "" }},
		{"missing api key", func(c *Config) { c.Claude.APIKey = "" }},
		{"missing allow list", func(c *Config) { c.Telegram.AllowedUsernames = " , " }},
		{"missing model", func(c *Config) { c.Claude.Model = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAllowedSetNormalizesNames(t *testing.T) {
	cfg := TelegramConfig{AllowedUsernames: " Alice ,BOB, ,carol"}

	set := cfg.AllowedSet()
	assert.Len(t, set, 3)
	assert.Contains(t, set, "alice")
	assert.Contains(t, set, "bob")
	assert.Contains(t, set, "carol")
}

func TestClaudeTimeoutDefault(t *testing.T) {
	assert.Equal(t, 60*time.Second, ClaudeConfig{}.Timeout())
	assert.Equal(t, 5*time.Second, ClaudeConfig{TimeoutSeconds: 5}.Timeout())
}
