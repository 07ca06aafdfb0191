package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.DatasetDir)
	assert.Equal(t, 2001, cfg.MinYear)
	assert.Equal(t, 2025, cfg.MaxYear)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.Equal(t, 0.0, cfg.HighConsumptionMWh)
	assert.Equal(t, 4, cfg.ExportConcurrency)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.Equal(t, "VA", cfg.MapboxRegion)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "datacenter-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_DIR", "/srv/atlas")
	t.Setenv("MIN_YEAR", "2005")
	t.Setenv("MAX_YEAR", "2030")
	t.Setenv("CACHE_SIZE", "8")
	t.Setenv("HIGH_CONSUMPTION_MWH", "60.5")
	t.Setenv("EXPORT_CONCURRENCY", "2")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("MAPBOX_REGION", "MD")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "snapshots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/srv/atlas", cfg.DatasetDir)
	assert.Equal(t, 2005, cfg.MinYear)
	assert.Equal(t, 2030, cfg.MaxYear)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, 60.5, cfg.HighConsumptionMWh)
	assert.Equal(t, 2, cfg.ExportConcurrency)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, "MD", cfg.MapboxRegion)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"MAPBOX_TIMEOUT", "bad", "MAPBOX_TIMEOUT"},
		{"MIN_YEAR", "abc", "MIN_YEAR"},
		{"MAX_YEAR", "0", "MAX_YEAR"},
		{"CACHE_SIZE", "-3", "CACHE_SIZE"},
		{"EXPORT_CONCURRENCY", "zero", "EXPORT_CONCURRENCY"},
		{"HIGH_CONSUMPTION_MWH", "lots", "HIGH_CONSUMPTION_MWH"},
		{"HIGH_CONSUMPTION_MWH", "-5", "HIGH_CONSUMPTION_MWH"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ReversedYearRange(t *testing.T) {
	t.Setenv("MIN_YEAR", "2020")
	t.Setenv("MAX_YEAR", "2010")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_YEAR")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_InvalidMapboxCacheSizeFallsBack(t *testing.T) {
	t.Setenv("MAPBOX_CACHE_SIZE", "huge")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}
