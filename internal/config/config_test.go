package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "America/Sao_Paulo", cfg.VenueTimezone)
	assert.Equal(t, 8, cfg.DefaultOpeningHour)
	assert.Equal(t, 18, cfg.DefaultClosingHour)
	assert.Equal(t, 4*time.Hour, cfg.MaxDuration)
	assert.Equal(t, 2*time.Minute, cfg.PastGrace)
	assert.Equal(t, "meetingrooms:updates", cfg.RedisChannel)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("VENUE_TIMEZONE", "Europe/Lisbon")
	t.Setenv("DEFAULT_OPENING_HOUR", "7")
	t.Setenv("DEFAULT_CLOSING_HOUR", "19")
	t.Setenv("PAST_GRACE", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Lisbon", cfg.VenueTimezone)
	assert.Equal(t, 7, cfg.DefaultOpeningHour)
	assert.Equal(t, 19, cfg.DefaultClosingHour)
	assert.Equal(t, time.Duration(0), cfg.PastGrace)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":       {"MAX_RESERVATION_DURATION", "four hours"},
		"bad opening":        {"DEFAULT_OPENING_HOUR", "eight"},
		"opening after end":  {"DEFAULT_OPENING_HOUR", "20"},
		"closing out of day": {"DEFAULT_CLOSING_HOUR", "24"},
		"negative grace":     {"PAST_GRACE", "-1m"},
		"zero burst":         {"RATE_LIMIT_BURST", "0"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
