package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DatasetDir replaces the embedded seed dataset when set.
	DatasetDir string
	MinYear    int
	MaxYear    int
	CacheSize  int
	// HighConsumptionMWh overrides the dataset's category threshold when > 0.
	HighConsumptionMWh float64
	ExportConcurrency  int

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxRegion    string

	// Kafka snapshot sink; disabled when KafkaBrokers is empty.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	minYear, err := parsePositiveInt("MIN_YEAR", 2001)
	if err != nil {
		return nil, err
	}
	maxYear, err := parsePositiveInt("MAX_YEAR", 2025)
	if err != nil {
		return nil, err
	}
	if minYear > maxYear {
		return nil, fmt.Errorf("invalid year range: MIN_YEAR %d is after MAX_YEAR %d", minYear, maxYear)
	}

	cacheSize, err := parsePositiveInt("CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	exportConcurrency, err := parsePositiveInt("EXPORT_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	threshold := 0.0
	if s := os.Getenv("HIGH_CONSUMPTION_MWH"); s != "" {
		threshold, err = strconv.ParseFloat(s, 64)
		if err != nil || threshold <= 0 {
			return nil, errors.New("invalid HIGH_CONSUMPTION_MWH: must be a positive number")
		}
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetDir:         os.Getenv("DATASET_DIR"),
		MinYear:            minYear,
		MaxYear:            maxYear,
		CacheSize:          cacheSize,
		HighConsumptionMWh: threshold,
		ExportConcurrency:  exportConcurrency,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxRegion:    sharedcfg.EnvOrDefault("MAPBOX_REGION", "VA"),

		KafkaBrokers:       sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "datacenter-snapshots"),
	}

	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether a snapshot topic should be written.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
