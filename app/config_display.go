package app

import (
	"log"
	"os"
	"sort"
	"strings"

	"weatherbot.app/config"
)

// ConfigDisplayer handles configuration and environment variable display
type ConfigDisplayer struct{}

// NewConfigDisplayer creates a new configuration displayer
func NewConfigDisplayer() *ConfigDisplayer {
	return &ConfigDisplayer{}
}

// PrintConfig prints all fields in the configuration
func (cd *ConfigDisplayer) PrintConfig(cfg *config.Config) {
	log.Println("==== APPLICATION CONFIGURATION ====")

	log.Printf("SERVER:\n")
	log.Printf("  Port: %d\n", cfg.Server.Port)

	log.Printf("\nDATABASE:\n")
	log.Printf("  Driver: %s\n", cfg.Database.Driver)
	if cfg.Database.Driver == "sqlite" {
		log.Printf("  Path: %s\n", cfg.Database.SQLitePath)
	} else {
		log.Printf("  Host: %s\n", cfg.Database.Host)
		log.Printf("  Port: %d\n", cfg.Database.Port)
		log.Printf("  User: %s\n", cfg.Database.User)
		log.Printf("  Password: %s\n", cd.maskString(cfg.Database.Password))
		log.Printf("  Name: %s\n", cfg.Database.Name)
		log.Printf("  SSLMode: %s\n", cfg.Database.SSLMode)
	}

	log.Printf("\nWEATHER API:\n")
	log.Printf("  API Key: %s\n", cd.maskString(cfg.Weather.APIKey))
	log.Printf("  Base URL: %s\n", cfg.Weather.BaseURL)
	log.Printf("  Units: %s\n", cfg.Weather.Units)
	log.Printf("  Timeout: %s\n", cfg.Weather.Timeout())
	log.Printf("  Max Retries: %d\n", cfg.Weather.MaxRetries)
	log.Printf("  Backoff Base: %s\n", cfg.Weather.BackoffBase())
	log.Printf("  Forecast Days: %d\n", cfg.Weather.ForecastDays)
	log.Printf("  Forecast Policy: %s\n", cfg.Weather.ForecastPolicy)
	log.Printf("  Request Log: %s\n", cfg.Weather.RequestLogPath)

	log.Printf("\nDISPATCH:\n")
	log.Printf("  Enabled: %t\n", cfg.Dispatch.Enabled)
	log.Printf("  Sender URL: %s\n", cfg.Dispatch.SenderURL)

	log.Println("===================================")
}

// PrintAllEnvVars prints all environment variables available to the application
func (cd *ConfigDisplayer) PrintAllEnvVars() {
	log.Println("==== ENVIRONMENT VARIABLES ====")

	envVars := os.Environ()
	sort.Strings(envVars)

	for _, env := range envVars {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		key := pair[0]
		value := pair[1]

		if cd.isSensitive(key) {
			value = cd.maskString(value)
		}

		log.Printf("%s=%s\n", key, value)
	}

	log.Println("===============================")
}

// maskString masks sensitive information like passwords and API keys
func (cd *ConfigDisplayer) maskString(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}

// isSensitive checks if an environment variable key is considered sensitive
func (cd *ConfigDisplayer) isSensitive(key string) bool {
	sensitiveKeys := []string{
		"API_KEY", "PASSWORD", "SECRET", "TOKEN", "KEY", "PASS", "PWD",
	}

	key = strings.ToUpper(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			return true
		}
	}

	return false
}
