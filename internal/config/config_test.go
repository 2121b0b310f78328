package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_IntegerTimeoutEnvValues(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("SERVER_TIMEOUT_SECONDS", "30")
	t.Setenv("SOURCE_TIMEOUT_SECONDS", "45")
	t.Setenv("DB_CONN_MAX_LIFETIME_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.ServerTimeout)
	assert.Equal(t, 45*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 15*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Marseille", cfg.BaseCity)
	assert.InDelta(t, 43.2965, cfg.BaseLat, 0.0001)
	assert.InDelta(t, 5.3698, cfg.BaseLon, 0.0001)
	assert.InDelta(t, 0.12, cfg.DefaultFeesPct, 0.0001)
	assert.Equal(t, 24, cfg.DigestLookbackHours)
	assert.Equal(t, 10, cfg.DigestMaxItems)
	assert.Equal(t, 20*time.Second, cfg.SourceTimeout)
	assert.Equal(t, []string{"sneaker", "shoes", "nike", "adidas"}, cfg.ScrapeKeywordList())
}

func TestLoad_MissingBotTokenFails(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}
