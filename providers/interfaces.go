package providers

import (
	"context"
	"time"

	"weatherbot.app/models"
)

// WeatherProvider defines the interface for upstream weather data providers
type WeatherProvider interface {
	CurrentByName(ctx context.Context, city string) (*models.WeatherSnapshot, error)
	CurrentByCoords(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error)
	ForecastByCoords(ctx context.Context, lat, lon float64) (*models.RawForecastSeries, error)
}

// FetchObserver receives attempt-level outcomes from the resilient fetcher.
// Implementations must be safe for concurrent use.
type FetchObserver interface {
	RecordRequest(endpoint string)
	RecordAttemptFailure(reason string)
	RecordRetry()
}

// RequestLogger records upstream exchanges for offline inspection.
// Implementations must redact credentials before writing anywhere.
type RequestLogger interface {
	LogRequest(operation, target string)
	LogSuccess(operation, target string, duration time.Duration)
	LogError(operation, target string, err error, duration time.Duration)
}

// Notifier delivers a rendered weather report to a subscriber. The concrete
// sender (chat platform relay) lives outside this service.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}
