package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Pipe config
	assert.Equal(t, "input_fifo", cfg.Pipes.RequestPath)
	assert.Equal(t, "output_fifo", cfg.Pipes.ResponsePath)
	assert.Equal(t, os.FileMode(0o666), cfg.Pipes.Perm)

	// Server config
	assert.Equal(t, 500*time.Millisecond, cfg.Server.SpawnInterval)
	assert.Zero(t, cfg.Server.MaxPending)
	assert.Zero(t, cfg.Server.DrainTimeout)
	assert.Zero(t, cfg.Server.IOTimeout)

	// Breaker config
	assert.Equal(t, uint32(5), cfg.Breaker.Failures)
	assert.Equal(t, 5*time.Second, cfg.Breaker.Cooldown)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Empty(t, cfg.Admin.Addr)
	assert.Equal(t, 20, cfg.Admin.RequestsPerSecond)
	assert.Equal(t, 40, cfg.Admin.Burst)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PIPE_REQUEST_PATH":  "/tmp/req",
		"PIPE_RESPONSE_PATH": "/tmp/resp",
		"PIPE_PERM":          "0600",
		"SPAWN_INTERVAL":     "50ms",
		"MAX_PENDING":        "16",
		"DRAIN_TIMEOUT":      "2s",
		"IO_TIMEOUT":         "1s",
		"BREAKER_FAILURES":   "3",
		"BREAKER_COOLDOWN":   "10s",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"ADMIN_ADDR":         "127.0.0.1:9090",
		"ADMIN_RPS":          "5",
		"ADMIN_BURST":        "10",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/req", cfg.Pipes.RequestPath)
	assert.Equal(t, "/tmp/resp", cfg.Pipes.ResponsePath)
	assert.Equal(t, os.FileMode(0o600), cfg.Pipes.Perm)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.SpawnInterval)
	assert.Equal(t, 16, cfg.Server.MaxPending)
	assert.Equal(t, 2*time.Second, cfg.Server.DrainTimeout)
	assert.Equal(t, time.Second, cfg.Server.IOTimeout)
	assert.Equal(t, uint32(3), cfg.Breaker.Failures)
	assert.Equal(t, 10*time.Second, cfg.Breaker.Cooldown)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "127.0.0.1:9090", cfg.Admin.Addr)
	assert.Equal(t, 5, cfg.Admin.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Admin.Burst)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable interval", "SPAWN_INTERVAL", "soon"},
		{"zero interval", "SPAWN_INTERVAL", "0s"},
		{"negative pending", "MAX_PENDING", "-1"},
		{"same pipes", "PIPE_RESPONSE_PATH", "input_fifo"},
		{"negative drain", "DRAIN_TIMEOUT", "-1s"},
		{"negative admin rps", "ADMIN_RPS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}
