package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"weatherbot.app/errors"
	"weatherbot.app/forecast"
	"weatherbot.app/models"
	"weatherbot.app/pkg/validation"
	"weatherbot.app/providers"
)

// WeatherService handles weather retrieval for the presentation layer.
type WeatherService struct {
	provider     providers.WeatherProvider
	forecastDays int
	policy       forecast.Policy
}

// NewWeatherService creates a new weather service with the specified provider
func NewWeatherService(provider providers.WeatherProvider, forecastDays int, policy forecast.Policy) *WeatherService {
	if forecastDays <= 0 {
		forecastDays = forecast.DefaultMaxDays
	}
	if policy == "" {
		policy = forecast.PolicyMean
	}
	return &WeatherService{
		provider:     provider,
		forecastDays: forecastDays,
		policy:       policy,
	}
}

// GetCurrentByName retrieves current weather for a place name, including the
// provider's transliteration fallback for names the upstream rejects.
func (s *WeatherService) GetCurrentByName(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	if strings.TrimSpace(city) == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	snapshot, err := s.provider.CurrentByName(ctx, city)
	if err != nil {
		slog.Error("get current weather by name", "city", city, "error", err)
		return nil, err
	}
	return snapshot, nil
}

// GetCurrentByCoords retrieves current weather for coordinates.
func (s *WeatherService) GetCurrentByCoords(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	snapshot, err := s.provider.CurrentByCoords(ctx, lat, lon)
	if err != nil {
		slog.Error("get current weather by coords", "lat", lat, "lon", lon, "error", err)
		return nil, err
	}
	return snapshot, nil
}

// GetForecast retrieves the raw forecast series and aggregates it into daily
// buckets. days beyond the configured horizon are capped.
func (s *WeatherService) GetForecast(ctx context.Context, lat, lon float64, days int) (*models.ForecastReport, error) {
	if days <= 0 || days > s.forecastDays {
		days = s.forecastDays
	}

	series, err := s.provider.ForecastByCoords(ctx, lat, lon)
	if err != nil {
		slog.Error("get forecast", "lat", lat, "lon", lon, "error", err)
		return nil, err
	}

	return &models.ForecastReport{
		CityName: series.CityName,
		Days:     forecast.Aggregate(series, days, s.policy),
	}, nil
}

// SubscriptionService handles subscriber settings. Delivery times are always
// stored in UTC: the local wall-clock value is converted once, at write time,
// using the offset supplied with the request.
type SubscriptionService struct {
	repo SubscriberRepositoryInterface
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo SubscriberRepositoryInterface) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

// SetHomeCity stores the subscriber's home city.
func (s *SubscriptionService) SetHomeCity(userID, city string) error {
	return s.repo.SetHomeCity(userID, city)
}

// SetDailyTime validates the local "HH:MM" string, converts it to UTC using
// utcOffsetSeconds and stores the result. Returns the stored UTC value.
func (s *SubscriptionService) SetDailyTime(userID, localTime string, utcOffsetSeconds int) (string, error) {
	localTime = strings.TrimSpace(localTime)
	if !validation.IsValidDailyTime(localTime) {
		return "", errors.NewValidationError(
			fmt.Sprintf("time must be 24-hour zero-padded HH:MM, got %q", localTime))
	}
	if !validation.IsValidUTCOffset(utcOffsetSeconds) {
		return "", errors.NewValidationError("utc offset out of range")
	}

	hours, _ := strconv.Atoi(localTime[:2])
	minutes, _ := strconv.Atoi(localTime[3:])

	total := hours*60 + minutes - utcOffsetSeconds/60
	total = ((total % 1440) + 1440) % 1440
	utcTime := fmt.Sprintf("%02d:%02d", total/60, total%60)

	if err := s.repo.SetDailyTime(userID, utcTime); err != nil {
		return "", err
	}

	slog.Info("daily time stored",
		"user_id", userID, "local", localTime,
		"offset_seconds", utcOffsetSeconds, "utc", utcTime)
	return utcTime, nil
}

// GetSubscriber returns the subscriber's stored settings.
func (s *SubscriptionService) GetSubscriber(userID string) (*models.SubscriberResponse, error) {
	subscriber, err := s.repo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if subscriber == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no subscriber with id %s", userID))
	}
	return &models.SubscriberResponse{
		UserID:       subscriber.UserID,
		HomeCity:     subscriber.HomeCity,
		DailyTimeUTC: subscriber.DailyTimeUTC,
	}, nil
}
