package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the commands need. All values come from the
// environment with sane defaults; flags may override individual fields.
type Config struct {
	OutputPath  string
	ListingURL  string
	HTTPTimeout time.Duration

	// Watch mode only.
	Schedule    string
	MetricsAddr string

	// Failure notification (watch mode only); disabled unless all three
	// are set.
	NotifyAPIKey string
	NotifyFrom   string
	NotifyTo     string
}

// FromEnv builds a Config from environment variables, with sane defaults.
func FromEnv() Config {
	cfg := Config{
		OutputPath:   getenv("TEPCO_RATES_OUTPUT", "tepco_rates.json"),
		ListingURL:   os.Getenv("TEPCO_RATES_LISTING_URL"),
		HTTPTimeout:  30 * time.Second,
		Schedule:     getenv("TEPCO_RATES_SCHEDULE", "0 6 * * *"),
		MetricsAddr:  getenv("TEPCO_RATES_METRICS_ADDR", ":9990"),
		NotifyAPIKey: os.Getenv("TEPCO_RATES_SENDGRID_API_KEY"),
		NotifyFrom:   os.Getenv("TEPCO_RATES_NOTIFY_FROM"),
		NotifyTo:     os.Getenv("TEPCO_RATES_NOTIFY_TO"),
	}
	if raw := os.Getenv("TEPCO_RATES_HTTP_TIMEOUT_SECONDS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.HTTPTimeout = time.Duration(v) * time.Second
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
