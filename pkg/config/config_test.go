package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-screener/pkg/logger"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithEnvPrefix("SCREENER_TEST_DEFAULTS_"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "async", cfg.Consult.Default)
	assert.Equal(t, DefaultSyncStates, cfg.Consult.SyncStates)
	assert.Equal(t, 15*time.Second, cfg.Transport.Timeout)
	assert.Equal(t, 0, cfg.Transport.Retries)
	assert.Empty(t, cfg.Transport.Endpoint)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SCREENER_LOG_LEVEL", "DEBUG")
	t.Setenv("SCREENER_LOG_FORMAT", "json")
	t.Setenv("SCREENER_TRANSPORT_ENDPOINT", "https://hooks.example.com/intake")
	t.Setenv("SCREENER_TRANSPORT_RETRY_WAIT", "2s")
	t.Setenv("SCREENER_TRANSPORT_RETRIES", "3")
	t.Setenv("SCREENER_CONSULT_SYNC_STATES", "tx, ca")
	t.Setenv("SCREENER_LOADER_ALLOW_HTTP", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://hooks.example.com/intake", cfg.Transport.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Transport.RetryWait)
	assert.Equal(t, 3, cfg.Transport.Retries)
	assert.Equal(t, []string{"TX", "CA"}, cfg.Consult.SyncStates)
	assert.True(t, cfg.Loader.AllowHTTP)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SCREENER_CONSULT_DEFAULT", "video")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: validation failed")
}

func TestConsult_SyncOnly(t *testing.T) {
	c := Default().Consult
	assert.True(t, c.SyncOnly("ar"))
	assert.True(t, c.SyncOnly(" ME "))
	assert.False(t, c.SyncOnly("TX"))
	assert.False(t, c.SyncOnly(""))
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	var buf bytes.Buffer
	lc := cfg.LoggerConfig(&buf)
	assert.Equal(t, logger.WarnLevel, lc.Level)
	assert.True(t, lc.JSON)
	assert.Same(t, &buf, lc.Output)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "transport.retry_wait", envKey("TRANSPORT_RETRY_WAIT"))
	assert.Equal(t, "log", envKey("LOG"))
	assert.Equal(t, "", envKey("__"))
}
