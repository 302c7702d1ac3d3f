// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("DISCORD_TOKEN is required")

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Token           string
	StoreDriver     string
	StorePath       string
	LogLevel        string
	LogFormat       string
	ConfirmDelay    time.Duration
	ResuppressDelay time.Duration
	MetricsAddr     string
}

// Load reads a .env file from the working directory when present, then the environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		token = os.Getenv("BOT_TOKEN")
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	driver := strings.ToLower(os.Getenv("STORE_DRIVER"))
	if driver == "" {
		driver = DriverJSON
	}
	var defaultPath string
	switch driver {
	case DriverJSON:
		defaultPath = "db.json"
	case DriverSQLite:
		defaultPath = "vxlinks.db"
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %q or %q", driver, DriverJSON, DriverSQLite)
	}
	path := os.Getenv("STORE_PATH")
	if path == "" {
		path = defaultPath
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	confirm, err := duration("CONFIRM_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	resuppress, err := duration("RESUPPRESS_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Token:           token,
		StoreDriver:     driver,
		StorePath:       path,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
		ConfirmDelay:    confirm,
		ResuppressDelay: resuppress,
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
	}, nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", key, d)
	}
	return d, nil
}
