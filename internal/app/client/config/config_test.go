package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, filepath.Join(dir, "queue.db"), cfg.QueuePath)
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Equal(t, 0, cfg.MaxRejections)
	assert.False(t, cfg.IdempotencyKeys)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
	assert.True(t, cfg.IsLocal())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SERVER_ADDRESS", "pms.example.com")
	t.Setenv("ENABLE_TLS", "true")
	t.Setenv("SETTLE_DELAY_MS", "250")
	t.Setenv("MAX_REJECTIONS", "3")
	t.Setenv("IDEMPOTENCY_KEYS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pms.example.com", cfg.BaseURL())
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 3, cfg.MaxRejections)
	assert.True(t, cfg.IdempotencyKeys)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		ServerAddress:  "localhost:8080",
		QueuePath:      "q.db",
		ProbeInterval:  time.Second,
		RequestTimeout: time.Second,
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty address", func(c *Config) { c.ServerAddress = "" }},
		{"empty queue", func(c *Config) { c.QueuePath = "" }},
		{"zero probe", func(c *Config) { c.ProbeInterval = 0 }},
		{"negative settle", func(c *Config) { c.SettleDelay = -1 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative rejections", func(c *Config) { c.MaxRejections = -1 }},
	}

	require.NoError(t, valid.validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.validate())
		})
	}
}
