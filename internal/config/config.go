// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NASA NeoWs feed configuration.
	NASAAPIKey   string
	NASABaseURL  string
	NASATimeout  time.Duration
	FeedCacheTTL time.Duration

	// Alert evaluator configuration.
	AlertInterval  time.Duration
	AlertCooldown  time.Duration
	AlertLookahead time.Duration

	// Postgres alert-rule store. Empty means rules live in memory only.
	DatabaseURL string

	// Kafka snapshot/alert publishing configuration.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
	KafkaAlertTopic    string
	KafkaEnabled       bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	nasaTimeout, err := parseDuration("NASA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("FEED_CACHE_TTL", "300s")
	if err != nil {
		return nil, err
	}
	alertInterval, err := parseDuration("ALERT_CHECK_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	alertCooldown, err := parseDuration("ALERT_COOLDOWN", "24h")
	if err != nil {
		return nil, err
	}
	alertLookahead, err := parseDuration("ALERT_LOOKAHEAD", "24h")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NASAAPIKey:   envOrDefault("NASA_API_KEY", "DEMO_KEY"),
		NASABaseURL:  envOrDefault("NASA_BASE_URL", "https://api.nasa.gov/neo/rest/v1"),
		NASATimeout:  nasaTimeout,
		FeedCacheTTL: cacheTTL,

		AlertInterval:  alertInterval,
		AlertCooldown:  alertCooldown,
		AlertLookahead: alertLookahead,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers:       brokers,
		KafkaSnapshotTopic: envOrDefault("KAFKA_SNAPSHOT_TOPIC", "neo-snapshots"),
		KafkaAlertTopic:    envOrDefault("KAFKA_ALERT_TOPIC", "neo-alerts"),
		KafkaEnabled:       kafkaEnabled,
	}

	if cfg.NASAAPIKey == "" {
		return nil, errors.New("NASA_API_KEY must not be empty")
	}
	if cfg.NASATimeout > 15*time.Second {
		return nil, errors.New("NASA_TIMEOUT must not exceed 15s")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
