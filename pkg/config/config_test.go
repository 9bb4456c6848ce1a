package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "https://studio.example/")
	t.Setenv("ALLOWED_EMAILS", " a@studio.example, ,b@studio.example ")
	t.Setenv("MEDIA_MAX_BYTES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "https://studio.example/media", cfg.MediaBaseURL)
	assert.Equal(t, []string{"a@studio.example", "b@studio.example"}, cfg.AllowedEmails)
	assert.Equal(t, int64(10<<20), cfg.MediaMaxBytes)
	assert.Equal(t, "UTC", cfg.AnalyticsTimezone)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("MEDIA_MAX_BYTES", "2048")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.example/media")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(2048), cfg.MediaMaxBytes)
	assert.Equal(t, "https://cdn.example/media", cfg.MediaBaseURL)
}

func TestAnalyticsLocation(t *testing.T) {
	loc, err := (&Config{AnalyticsTimezone: "Asia/Bangkok"}).AnalyticsLocation()
	assert.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", loc.String())

	loc, err = (&Config{AnalyticsTimezone: "Mars/Olympus"}).AnalyticsLocation()
	assert.Error(t, err)
	assert.Equal(t, time.UTC, loc)
}
