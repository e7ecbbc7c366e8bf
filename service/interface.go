package service

import (
	"context"
	"time"

	"weatherbot.app/models"
)

// WeatherServiceInterface defines the interface for weather retrieval
// operations
type WeatherServiceInterface interface {
	GetCurrentByName(ctx context.Context, city string) (*models.WeatherSnapshot, error)
	GetCurrentByCoords(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error)
	GetForecast(ctx context.Context, lat, lon float64, days int) (*models.ForecastReport, error)
}

// SubscriptionServiceInterface defines the interface for subscriber settings
type SubscriptionServiceInterface interface {
	SetHomeCity(userID, city string) error
	// SetDailyTime converts the subscriber's local wall-clock time to UTC
	// and stores it; it returns the stored UTC "HH:MM" value.
	SetDailyTime(userID, localTime string, utcOffsetSeconds int) (string, error)
	GetSubscriber(userID string) (*models.SubscriberResponse, error)
}

// DispatchServiceInterface defines the interface for scheduled delivery runs
type DispatchServiceInterface interface {
	Tick(ctx context.Context, now time.Time) (*models.DispatchReport, error)
}

// SubscriberRepositoryInterface defines the interface for subscriber data operations
type SubscriberRepositoryInterface interface {
	FindByUserID(userID string) (*models.Subscriber, error)
	SetHomeCity(userID, city string) error
	GetHomeCity(userID string) (string, error)
	SetDailyTime(userID, timeUTC string) error
	GetDailyTime(userID string) (string, error)
	ListDispatchCandidates(nowUTC string) ([]models.DispatchCandidate, error)
}

// DispatchObserver receives delivery outcome counts per run.
type DispatchObserver interface {
	RecordDispatch(sent, failed int)
}

// Ensure implementations satisfy interfaces
var _ WeatherServiceInterface = (*WeatherService)(nil)
var _ SubscriptionServiceInterface = (*SubscriptionService)(nil)
var _ DispatchServiceInterface = (*DispatchService)(nil)
