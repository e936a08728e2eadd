package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CSVSource        string
	OutputPath       string
	MatrixOutputPath string
	FetchTimeout     time.Duration

	// Filter drives aggregation; see domain.DefaultFilterSet for the defaults.
	Filter      domain.FilterSet
	LegendSteps int

	ServeEnabled    bool
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka cell publishing (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeoutStr := sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "30s")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	legendSteps, err := strconv.Atoi(sharedcfg.EnvOrDefault("LEGEND_STEPS", "5"))
	if err != nil || legendSteps < 2 {
		return nil, errors.New("invalid LEGEND_STEPS: must be an integer >= 2")
	}

	filter := domain.DefaultFilterSet()
	if v := os.Getenv("TARGET_CITIES"); v != "" {
		filter.Cities = parseCities(v)
	}
	if v := os.Getenv("PEAK_HOURS"); v != "" {
		hours, err := parseHours(v)
		if err != nil {
			return nil, err
		}
		filter.Hours = hours
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter set: %w", err)
	}

	cfg := &Config{
		CSVSource:        sharedcfg.EnvOrDefault("CSV_SOURCE", "data/collisions_2024_transformed_data.csv"),
		OutputPath:       sharedcfg.EnvOrDefault("OUTPUT_PATH", "heatmap.svg"),
		MatrixOutputPath: os.Getenv("MATRIX_OUTPUT_PATH"),
		FetchTimeout:     fetchTimeout,
		Filter:           filter,
		LegendSteps:      legendSteps,
		ServeEnabled:     os.Getenv("SERVE_ENABLED") == "true",
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "collision-heatmap-cells"),
	}

	if strings.TrimSpace(cfg.CSVSource) == "" {
		return nil, errors.New("CSV_SOURCE is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// parseCities splits a comma-separated city list. City names are matched
// verbatim downstream, so only the separators' surrounding spaces are trimmed.
func parseCities(s string) []string {
	parts := strings.Split(s, ",")
	cities := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cities = append(cities, p)
		}
	}
	return cities
}

func parseHours(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	hours := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		h, err := strconv.Atoi(p)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("invalid PEAK_HOURS entry %q", p)
		}
		hours = append(hours, h)
	}
	return hours, nil
}
