package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
)

// Config structure represents the application configuration
type Config struct {
	Canvas struct {
		BaseURL                string `yaml:"base_url" env:"CANVAS_BASE_URL"`
		APIToken               string `yaml:"api_token" env:"CANVAS_API_TOKEN"`
		PerPage                int    `yaml:"per_page" env:"CANVAS_PER_PAGE"`
		RequestTimeout         string `yaml:"request_timeout" env:"CANVAS_REQUEST_TIMEOUT"`
		MaxAttempts            int    `yaml:"max_attempts" env:"CANVAS_MAX_ATTEMPTS"`
		RetryBaseDelay         string `yaml:"retry_base_delay" env:"CANVAS_RETRY_BASE_DELAY"`
		AnnouncementWindowDays int    `yaml:"announcement_window_days" env:"CANVAS_ANNOUNCEMENT_WINDOW_DAYS"`
	} `yaml:"canvas"`

	Database struct {
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MinConns        int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
		MaxConns        int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Sync struct {
		Interval           string `yaml:"interval" env:"SYNC_INTERVAL"`
		FetchConcurrency   int    `yaml:"fetch_concurrency" env:"SYNC_FETCH_CONCURRENCY"`
		PersistConcurrency int    `yaml:"persist_concurrency" env:"SYNC_PERSIST_CONCURRENCY"`
	} `yaml:"sync"`

	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
		To       string `yaml:"to" env:"SMTP_TO"`
		UseTLS   bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML into Config structure
		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	err := loadFromEnv(config)
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Canvas defaults
	config.Canvas.BaseURL = "https://canvas.its.virginia.edu"
	config.Canvas.PerPage = 100
	config.Canvas.RequestTimeout = "30s"
	config.Canvas.MaxAttempts = 1
	config.Canvas.RetryBaseDelay = "1s"
	config.Canvas.AnnouncementWindowDays = 120

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "canvasmirror"
	config.Database.SSLMode = "disable"
	config.Database.MinConns = 1
	config.Database.MaxConns = 10
	config.Database.ConnMaxLifetime = "1h"

	// Sync defaults: run once and exit unless an interval is configured
	config.Sync.Interval = "0"
	config.Sync.FetchConcurrency = 3
	config.Sync.PersistConcurrency = 4

	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "release"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// SMTP defaults (notifications disabled until a host is configured)
	config.SMTP.Port = 587
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	// Recursively process the config structure and look for env tags
	err := processStructFields(config)
	if err != nil {
		return err
	}

	return nil
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Canvas.APIToken == "" {
		return fmt.Errorf("%w: CANVAS_API_TOKEN is not set; generate one in Canvas under Account > Settings > New Access Token", apperrors.ErrConfiguration)
	}

	if config.Canvas.BaseURL == "" {
		return fmt.Errorf("%w: canvas base URL is required", apperrors.ErrConfiguration)
	}

	if config.Canvas.PerPage < 1 || config.Canvas.PerPage > 100 {
		return fmt.Errorf("%w: canvas per_page must be between 1 and 100", apperrors.ErrConfiguration)
	}

	if config.Canvas.MaxAttempts < 1 {
		return fmt.Errorf("%w: canvas max_attempts must be at least 1", apperrors.ErrConfiguration)
	}

	if config.Database.URL == "" && (config.Database.Host == "" || config.Database.DBName == "") {
		return fmt.Errorf("%w: either DATABASE_URL or database host and name are required", apperrors.ErrConfiguration)
	}

	if config.Sync.FetchConcurrency < 1 || config.Sync.PersistConcurrency < 1 {
		return fmt.Errorf("%w: sync concurrency values must be at least 1", apperrors.ErrConfiguration)
	}

	// Validate duration formats
	if _, err := time.ParseDuration(config.Canvas.RequestTimeout); err != nil {
		return fmt.Errorf("%w: invalid canvas request_timeout format: %v", apperrors.ErrConfiguration, err)
	}

	if _, err := time.ParseDuration(config.Canvas.RetryBaseDelay); err != nil {
		return fmt.Errorf("%w: invalid canvas retry_base_delay format: %v", apperrors.ErrConfiguration, err)
	}

	if _, err := parseInterval(config.Sync.Interval); err != nil {
		return fmt.Errorf("%w: invalid sync interval format: %v", apperrors.ErrConfiguration, err)
	}

	return nil
}

// SyncInterval returns the configured sync interval. Zero means run once
// and exit.
func (c *Config) SyncInterval() time.Duration {
	interval, err := parseInterval(c.Sync.Interval)
	if err != nil {
		return 0
	}
	return interval
}

// parseInterval accepts either a Go duration string ("1h30m") or a bare
// number of seconds ("3600"). "0" disables the scheduler.
func parseInterval(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("interval cannot be negative")
		}
		return time.Duration(seconds) * time.Second, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if duration < 0 {
		return 0, fmt.Errorf("interval cannot be negative")
	}
	return duration, nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

