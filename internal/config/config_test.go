package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", "test.db")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	for _, k := range []string{"APP_PORT", "ACCESS_TOKEN_TTL_MIN", "REFRESH_TOKEN_TTL_DAYS", "BCRYPT_COST", "LOG_LEVEL", "EVENTS_ENABLED"} {
		t.Setenv(k, "")
	}
}

func TestFromEnvSQLiteDefaults(t *testing.T) {
	sqliteEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.EventsEnabled)
}

func TestFromEnvRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret":        {"JWT_SECRET": "short"},
		"unknown driver":      {"DB_DRIVER": "postgres"},
		"mysql without host":  {"DB_DRIVER": "mysql", "DB_USER": "u", "DB_NAME": "n", "DB_HOST": ""},
		"events without url":  {"EVENTS_ENABLED": "true", "RABBITMQ_URL": ""},
		"bad log level":       {"LOG_LEVEL": "loud"},
		"bcrypt out of range": {"BCRYPT_COST": "2"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			sqliteEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestRateLimitShorthands(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 5, rl.Capacity)
	assert.Equal(t, 1, rl.RefillTokens)
	assert.Equal(t, 2*time.Second, rl.RefillInterval)
	assert.Equal(t, 10*time.Second, rl.TTL, "ttl is raised to five refill intervals")
}
