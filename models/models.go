// Package models defines data structures used throughout the application
package models

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

// Subscriber represents a chat user's weather delivery settings. A subscriber
// is dispatch-eligible only when both HomeCity and DailyTimeUTC are set.
type Subscriber struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       string         `json:"user_id" gorm:"uniqueIndex;not null"`
	HomeCity     string         `json:"home_city"`
	DailyTimeUTC string         `json:"daily_time_utc"` // "HH:MM", 24-hour, zero-padded, always UTC
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Location identifies the resolved place a snapshot describes.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// HasFiniteCoords reports whether both coordinates are finite numbers.
// A snapshot without finite coordinates is a fetch failure, not a valid
// empty result.
func (l Location) HasFiniteCoords() bool {
	return !math.IsNaN(l.Lat) && !math.IsInf(l.Lat, 0) &&
		!math.IsNaN(l.Lon) && !math.IsInf(l.Lon, 0)
}

// CurrentConditions holds the measured values of a snapshot.
type CurrentConditions struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	PressureHpa float64 `json:"pressure_hpa,omitempty"`
}

// Condition is the upstream's weather category plus free-text description.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// WeatherSnapshot represents current weather for a resolved location.
// Snapshots are transient and owned by the caller that requested them.
type WeatherSnapshot struct {
	Location  Location          `json:"location"`
	Current   CurrentConditions `json:"current"`
	Condition Condition         `json:"condition"`
}

// Summary renders a short single-line description of the snapshot for
// senders that deliver plain text.
func (s *WeatherSnapshot) Summary() string {
	pressure := "-"
	if s.Current.PressureHpa > 0 {
		// Upstream reports hPa; chat users expect mmHg.
		pressure = fmt.Sprintf("%d mmHg", int(math.Round(s.Current.PressureHpa*0.75)))
	}
	return fmt.Sprintf("%s %s: %d°C (feels like %d°C), %s, humidity %d%%, pressure %s",
		ConditionEmoji(s.Condition.Main),
		s.Location.Name,
		int(math.Round(s.Current.Temperature)),
		int(math.Round(s.Current.FeelsLike)),
		s.Condition.Description,
		int(s.Current.Humidity),
		pressure,
	)
}

var conditionEmoji = map[string]string{
	"Clear":        "☀️",
	"Clouds":       "☁️",
	"Rain":         "🌧️",
	"Drizzle":      "🌦️",
	"Thunderstorm": "⛈️",
	"Snow":         "❄️",
	"Mist":         "🌫️",
	"Smoke":        "🌫️",
	"Haze":         "🌫️",
	"Fog":          "🌫️",
	"Dust":         "🌫️",
	"Sand":         "🌫️",
	"Ash":          "🌫️",
	"Squall":       "💨",
	"Tornado":      "🌪️",
}

// ConditionEmoji maps an upstream condition category to a display emoji.
// Unknown categories get a neutral fallback.
func ConditionEmoji(main string) string {
	if e, ok := conditionEmoji[main]; ok {
		return e
	}
	return "🌤"
}

// ForecastSample is one timestamped point of a raw multi-point forecast.
type ForecastSample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"condition"`
}

// RawForecastSeries is the time-ordered forecast as returned by the
// upstream, before daily aggregation. TimezoneOffset is the location's UTC
// offset in seconds and provides the calendar-date context for bucketing.
type RawForecastSeries struct {
	CityName       string           `json:"city_name"`
	TimezoneOffset int              `json:"timezone_offset"`
	Samples        []ForecastSample `json:"samples"`
}

// DailyForecast is one calendar day summarized from the raw series.
type DailyForecast struct {
	Date        time.Time `json:"date"` // midnight in the series' timezone
	Temperature float64   `json:"temperature"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Condition   Condition `json:"condition"`
}

// ForecastReport is the aggregated multi-day forecast for one location.
type ForecastReport struct {
	CityName string          `json:"city_name"`
	Days     []DailyForecast `json:"days"`
}

// DispatchCandidate is a subscriber due for delivery at the current minute.
type DispatchCandidate struct {
	UserID string `json:"user_id"`
	City   string `json:"city"`
}

// DispatchResult pairs a candidate with the snapshot fetched for them.
type DispatchResult struct {
	UserID   string           `json:"user_id"`
	City     string           `json:"city"`
	Snapshot *WeatherSnapshot `json:"snapshot"`
}

// SetHomeCityRequest is the payload for updating a subscriber's home city.
type SetHomeCityRequest struct {
	City string `json:"city" form:"city" binding:"required"`
}

// SetDailyTimeRequest carries the subscriber's local delivery time together
// with their UTC offset so the service can store the UTC equivalent.
type SetDailyTimeRequest struct {
	Time             string `json:"time" form:"time" binding:"required"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds" form:"utc_offset_seconds"`
}

// SubscriberResponse is the API view of a subscriber record.
type SubscriberResponse struct {
	UserID       string `json:"user_id"`
	HomeCity     string `json:"home_city"`
	DailyTimeUTC string `json:"daily_time_utc"`
}

// DispatchReport summarizes one dispatch run.
type DispatchReport struct {
	RunID   string           `json:"run_id"`
	Time    string           `json:"time"`
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []DispatchResult `json:"results,omitempty"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
