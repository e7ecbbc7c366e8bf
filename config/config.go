package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"weatherbot.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	Weather  WeatherConfig  `split_words:"true"`
	Dispatch DispatchConfig `split_words:"true"`
	LogLevel string         `envconfig:"LOG_LEVEL" default:"info"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains subscriber store settings. SQLite is the default
// embedded store; Postgres is available for deployments that already run one.
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"subscribers.db"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DB_NAME" default:"weatherbot"`
	SSLMode    string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted Postgres connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// WeatherConfig contains settings for the upstream weather API and the
// resilience policy of the fetcher.
type WeatherConfig struct {
	APIKey         string `envconfig:"WEATHER_API_KEY" required:"true"`
	BaseURL        string `envconfig:"WEATHER_API_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	Units          string `envconfig:"WEATHER_UNITS" default:"metric"`
	Lang           string `envconfig:"WEATHER_LANG" default:""`
	TimeoutSeconds int    `envconfig:"WEATHER_TIMEOUT_SECONDS" default:"15"`
	MaxRetries     int    `envconfig:"WEATHER_MAX_RETRIES" default:"3"`
	BackoffBaseMs  int    `envconfig:"WEATHER_BACKOFF_BASE_MS" default:"1000"`
	ForecastDays   int    `envconfig:"WEATHER_FORECAST_DAYS" default:"5"`
	ForecastPolicy string `envconfig:"WEATHER_FORECAST_POLICY" default:"mean"`
	RequestLogPath string `envconfig:"WEATHER_REQUEST_LOG" default:"logs/upstream.log"`
}

// Timeout returns the per-attempt deadline.
func (w WeatherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// BackoffBase returns the initial retry delay.
func (w WeatherConfig) BackoffBase() time.Duration {
	return time.Duration(w.BackoffBaseMs) * time.Millisecond
}

// DispatchConfig contains settings for scheduled report delivery.
type DispatchConfig struct {
	Enabled   bool   `envconfig:"DISPATCH_ENABLED" default:"true"`
	SenderURL string `envconfig:"DISPATCH_SENDER_URL" default:""`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.SQLitePath == "" {
			return errors.NewConfigurationError("DB_SQLITE_PATH cannot be empty", nil)
		}
	case "postgres":
		if d.Host == "" {
			return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
		}
		if d.Port < 1 || d.Port > 65535 {
			return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
		}
		if d.User == "" {
			return errors.NewConfigurationError("DB_USER cannot be empty", nil)
		}
		if d.Name == "" {
			return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
		}
		if err := d.validateSSLMode(); err != nil {
			return err
		}
	default:
		return errors.NewConfigurationError("DB_DRIVER must be either 'sqlite' or 'postgres'", nil)
	}
	return nil
}

func (d *DatabaseConfig) validateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks weather API configuration
func (w *WeatherConfig) Validate() error {
	if w.APIKey == "" {
		return errors.NewConfigurationError("WEATHER_API_KEY is required", nil)
	}
	if w.BaseURL == "" {
		return errors.NewConfigurationError("WEATHER_API_BASE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(w.BaseURL, "http://") && !strings.HasPrefix(w.BaseURL, "https://") {
		return errors.NewConfigurationError("WEATHER_API_BASE_URL must start with http:// or https://", nil)
	}
	if w.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_TIMEOUT_SECONDS must be at least 1", nil)
	}
	if w.MaxRetries < 0 {
		return errors.NewConfigurationError("WEATHER_MAX_RETRIES cannot be negative", nil)
	}
	if w.BackoffBaseMs < 1 {
		return errors.NewConfigurationError("WEATHER_BACKOFF_BASE_MS must be at least 1", nil)
	}
	if w.ForecastDays < 1 || w.ForecastDays > 7 {
		return errors.NewConfigurationError("WEATHER_FORECAST_DAYS must be between 1 and 7", nil)
	}
	if w.ForecastPolicy != "mean" && w.ForecastPolicy != "minmax" {
		return errors.NewConfigurationError("WEATHER_FORECAST_POLICY must be either 'mean' or 'minmax'", nil)
	}
	return nil
}
