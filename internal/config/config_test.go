package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("QUEUE_WORKERS", "not-a-number")

	c := FromEnv()

	assert.Equal(t, "test", c.App.Env)
	assert.Equal(t, ":8080", c.App.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "s3cret", c.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, c.Auth.SessionTTL)
	assert.Equal(t, "local", c.Storage.Type)
	assert.Equal(t, "memory", c.Queue.Type)
	assert.Equal(t, 3, c.Queue.Workers)
	assert.False(t, c.Mail.Enabled)
	assert.False(t, c.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("MAIL_SYNC_ENABLED", "true")
	t.Setenv("APP_TIMEZONE", "UTC")

	c := FromEnv()

	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 90*time.Minute, c.Auth.SessionTTL)
	assert.True(t, c.Mail.Enabled)
	assert.NotEmpty(t, c.Auth.JWTSecret)
	assert.Equal(t, time.UTC, c.Location())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	c := &Config{App: AppConfig{TimeZone: "Nowhere/Special"}}
	assert.Equal(t, time.UTC, c.Location())
}
