package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "notifications", cfg.DynamoTables.Notifications)
	assert.Equal(t, "https://fcm.googleapis.com", cfg.FCMBaseURL)
	assert.False(t, cfg.TokenCache)
	assert.Equal(t, time.Second, cfg.StreamPollInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DYNAMO_TABLE_USERS", "people")
	t.Setenv("TOKEN_CACHE", "true")
	t.Setenv("STREAM_POLL_INTERVAL_MS", "250")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "people", cfg.DynamoTables.Users)
	assert.True(t, cfg.TokenCache)
	assert.Equal(t, 250*time.Millisecond, cfg.StreamPollInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "soon")
	t.Setenv("TOKEN_CACHE", "maybe")

	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.TokenCache)
}

func TestLocation_UnknownZoneIsUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
