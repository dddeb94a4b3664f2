package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                      "",
		"REDIS_URL":                 "",
		"CURRENCY_CODE":             "",
		"CATALOG_CACHE_TTL":         "",
		"HTTP_MAX_BODY_BYTES":       "",
		"CATALOG_BREAKER_THRESHOLD": "",
		"OBS_ENABLE_TRACING":        "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "SEK", cfg.CurrencyCode)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.False(t, cfg.RedisEnabled())
	require.True(t, cfg.SeedInventory)
	require.Equal(t, "pos", cfg.Obs.MetricsNamespace)
	require.Equal(t, int64(16384), cfg.MaxBodyBytes)
	require.Equal(t, 5, cfg.BreakerThreshold)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                      ":9090",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"CURRENCY_CODE":             "eur",
		"IDEMPOTENCY_TTL":           "1h",
		"SEED_INVENTORY":            "false",
		"OBS_TRACE_SAMPLE_RATIO":    "0.25",
		"CATALOG_BREAKER_THRESHOLD": "3",
		"OBS_ENABLE_TRACING":        "",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "EUR", cfg.CurrencyCode)
	require.Equal(t, time.Hour, cfg.IdempotencyTTL)
	require.True(t, cfg.RedisEnabled())
	require.False(t, cfg.SeedInventory)
	require.InDelta(t, 0.25, cfg.Obs.TraceSampleRatio, 1e-9)
	require.Equal(t, 3, cfg.BreakerThreshold)
}

func TestLoadRejectsTracingWithoutEndpoint(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"OBS_ENABLE_TRACING": "true",
		"OBS_TRACE_EXPORTER": "otlp",
		"OBS_OTLP_ENDPOINT":  "",
	})
	require.Error(t, err)
}

func TestLoadRejectsBadCurrency(t *testing.T) {
	_, err := LoadForTests(map[string]string{"CURRENCY_CODE": "KRONA", "OBS_ENABLE_TRACING": ""})
	require.Error(t, err)
}
