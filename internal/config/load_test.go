package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Config loading reads the process environment, so these tests use t.Setenv
// and must not run in parallel.

const testSecret = "0123456789abcdef0123456789abcdef" // 32 chars, minimum length

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TASKHIVE_DATABASE_URL", "postgres://localhost:5432/taskhive_test")
	t.Setenv("TASKHIVE_AUTH_JWT_SECRET", testSecret)
	t.Setenv("TASKHIVE_SERVER_PORT", "9090")
	t.Setenv("TASKHIVE_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/taskhive_test", cfg.Database.URL)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKHIVE_DATABASE_URL", "postgres://localhost:5432/taskhive_test")
	t.Setenv("TASKHIVE_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.Auth.VerifyTimeout)
	assert.Equal(t, 30*time.Second, cfg.Auth.ProfileCacheTTL)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env: map[string]string{
				"TASKHIVE_AUTH_JWT_SECRET": testSecret,
			},
		},
		{
			name: "jwt secret too short",
			env: map[string]string{
				"TASKHIVE_DATABASE_URL":    "postgres://localhost:5432/taskhive_test",
				"TASKHIVE_AUTH_JWT_SECRET": "too-short",
			},
		},
		{
			name: "invalid log level",
			env: map[string]string{
				"TASKHIVE_DATABASE_URL":     "postgres://localhost:5432/taskhive_test",
				"TASKHIVE_AUTH_JWT_SECRET":  testSecret,
				"TASKHIVE_SERVER_LOG_LEVEL": "loud",
			},
		},
		{
			name: "port out of range",
			env: map[string]string{
				"TASKHIVE_DATABASE_URL":    "postgres://localhost:5432/taskhive_test",
				"TASKHIVE_AUTH_JWT_SECRET": testSecret,
				"TASKHIVE_SERVER_PORT":     "70000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
