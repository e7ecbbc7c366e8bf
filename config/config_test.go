package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("RequiredFieldsMissing", func(t *testing.T) {
		os.Clearenv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "required key WEATHER_API_KEY missing")
	})

	t.Run("DefaultValues", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))

		config, err := LoadConfig()

		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, "sqlite", config.Database.Driver)
		assert.Equal(t, "subscribers.db", config.Database.SQLitePath)
		assert.Equal(t, "https://api.openweathermap.org/data/2.5", config.Weather.BaseURL)
		assert.Equal(t, "metric", config.Weather.Units)
		assert.Equal(t, 15*time.Second, config.Weather.Timeout())
		assert.Equal(t, 3, config.Weather.MaxRetries)
		assert.Equal(t, time.Second, config.Weather.BackoffBase())
		assert.Equal(t, 5, config.Weather.ForecastDays)
		assert.Equal(t, "mean", config.Weather.ForecastPolicy)
		assert.True(t, config.Dispatch.Enabled)
		assert.Empty(t, config.Dispatch.SenderURL)
	})

	t.Run("CustomValues", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))
		require.NoError(t, os.Setenv("SERVER_PORT", "9090"))
		require.NoError(t, os.Setenv("DB_DRIVER", "postgres"))
		require.NoError(t, os.Setenv("DB_NAME", "weather_prod"))
		require.NoError(t, os.Setenv("WEATHER_TIMEOUT_SECONDS", "10"))
		require.NoError(t, os.Setenv("WEATHER_MAX_RETRIES", "2"))
		require.NoError(t, os.Setenv("DISPATCH_SENDER_URL", "https://relay.example.com/send"))

		config, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, 9090, config.Server.Port)
		assert.Equal(t, "postgres", config.Database.Driver)
		assert.Equal(t, "weather_prod", config.Database.Name)
		assert.Contains(t, config.Database.GetDSN(), "dbname=weather_prod")
		assert.Equal(t, 10*time.Second, config.Weather.Timeout())
		assert.Equal(t, 2, config.Weather.MaxRetries)
		assert.Equal(t, "https://relay.example.com/send", config.Dispatch.SenderURL)
	})

	t.Run("InvalidDriver", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))
		require.NoError(t, os.Setenv("DB_DRIVER", "mongodb"))

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "DB_DRIVER")
	})

	t.Run("InvalidBaseURL", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))
		require.NoError(t, os.Setenv("WEATHER_API_BASE_URL", "ftp://example.com"))

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("InvalidForecastDays", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))
		require.NoError(t, os.Setenv("WEATHER_FORECAST_DAYS", "10"))

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "WEATHER_FORECAST_DAYS")
	})

	t.Run("InvalidForecastPolicy", func(t *testing.T) {
		os.Clearenv()
		require.NoError(t, os.Setenv("WEATHER_API_KEY", "test-api-key"))
		require.NoError(t, os.Setenv("WEATHER_FORECAST_POLICY", "median"))

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "WEATHER_FORECAST_POLICY")
	})
}
