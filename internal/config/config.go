package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	DispatchInterval time.Duration
	EventsEndpoint   string
	EventsTopic      string
	EventsSource     string
}

// Load reads configuration from environment variables with sane defaults.
// EventsEndpoint is optional; without it lifecycle events are only recorded
// locally and never pushed to a broker.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:         strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		DispatchInterval: parseSeconds(strings.TrimSpace(os.Getenv("DISPATCH_INTERVAL_SECONDS"))),
		EventsEndpoint:   strings.TrimSpace(os.Getenv("EVENTS_ENDPOINT")),
		EventsTopic:      strings.TrimSpace(os.Getenv("EVENTS_TOPIC")),
		EventsSource:     strings.TrimSpace(os.Getenv("EVENTS_SOURCE")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskhub.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DispatchInterval == 0 {
		cfg.DispatchInterval = 10 * time.Second
	}
	if cfg.EventsTopic == "" {
		cfg.EventsTopic = "task-events"
	}
	if cfg.EventsSource == "" {
		cfg.EventsSource = "/taskhub/backend"
	}

	return cfg, nil
}

func parseSeconds(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
