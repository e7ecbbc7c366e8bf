package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weatherbot.app/errors"
	"weatherbot.app/models"
)

// OpenWeatherProvider retrieves current conditions and forecasts from the
// OpenWeatherMap API through the resilient fetcher.
type OpenWeatherProvider struct {
	apiKey   string
	baseURL  string
	units    string
	lang     string
	fetcher  *Fetcher
	observer FetchObserver
}

// OpenWeatherConfig holds the upstream settings the provider needs.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	Units   string
	Lang    string
}

// NewOpenWeatherProvider creates an OpenWeatherMap-backed weather provider.
func NewOpenWeatherProvider(cfg OpenWeatherConfig, fetcher *Fetcher, observer FetchObserver) *OpenWeatherProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &OpenWeatherProvider{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		units:    cfg.Units,
		lang:     cfg.Lang,
		fetcher:  fetcher,
		observer: observer,
	}
}

type openWeatherCurrent struct {
	Coord *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  float64  `json:"humidity"`
		Pressure  float64  `json:"pressure"`
	} `json:"main"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name    string          `json:"name"`
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

type openWeatherForecast struct {
	Cod  json.RawMessage `json:"cod"`
	List []struct {
		Dt   *int64 `json:"dt"`
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// CurrentByName retrieves current weather by place name. When the upstream
// reports the raw name as not found, the transliterated form is tried exactly
// once before giving up with a not-found error.
func (p *OpenWeatherProvider) CurrentByName(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	result, err := p.fetchCurrent(ctx, url.Values{"q": {city}})
	if err != nil {
		return nil, err
	}

	if isNotFound(result) {
		latin := Transliterate(city)
		if latin == city {
			return nil, errors.NewNotFoundError(fmt.Sprintf("place not found: %s", city))
		}

		slog.Info("place not found, retrying with transliterated name",
			"city", city, "fallback", latin)

		result, err = p.fetchCurrent(ctx, url.Values{"q": {latin}})
		if err != nil {
			return nil, err
		}
		if isNotFound(result) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("place not found: %s (also tried %q)", city, latin))
		}
	}

	return p.parseCurrent(result)
}

// CurrentByCoords retrieves current weather directly by coordinates. There
// is no transliteration step on this path.
func (p *OpenWeatherProvider) CurrentByCoords(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return nil, errors.NewValidationError("coordinates must be finite")
	}

	result, err := p.fetchCurrent(ctx, url.Values{
		"lat": {formatCoord(lat)},
		"lon": {formatCoord(lon)},
	})
	if err != nil {
		return nil, err
	}
	if isNotFound(result) {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("no weather for coordinates (%.4f, %.4f)", lat, lon))
	}

	return p.parseCurrent(result)
}

// ForecastByCoords retrieves the multi-point forecast series (3-hour
// resolution, several days) for the given coordinates.
func (p *OpenWeatherProvider) ForecastByCoords(ctx context.Context, lat, lon float64) (*models.RawForecastSeries, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return nil, errors.NewValidationError("coordinates must be finite")
	}

	query := url.Values{
		"lat":   {formatCoord(lat)},
		"lon":   {formatCoord(lon)},
		"appid": {p.apiKey},
		"units": {p.units},
	}
	if p.lang != "" {
		query.Set("lang", p.lang)
	}

	result, err := p.fetcher.Do(ctx, fmt.Sprintf("%s/forecast?%s", p.baseURL, query.Encode()))
	if err != nil {
		return nil, err
	}
	p.observer.RecordRequest("forecast")

	if isNotFound(result) {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("no forecast for coordinates (%.4f, %.4f)", lat, lon))
	}
	if result.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(
			fmt.Sprintf("forecast request returned status %d", result.StatusCode), nil)
	}

	var payload openWeatherForecast
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, errors.NewInvalidResponseError("forecast response is not valid JSON")
	}

	series := &models.RawForecastSeries{
		CityName:       payload.City.Name,
		TimezoneOffset: payload.City.Timezone,
		Samples:        make([]models.ForecastSample, 0, len(payload.List)),
	}

	for i, item := range payload.List {
		if item.Dt == nil || item.Main.Temp == nil {
			return nil, errors.NewInvalidResponseError(
				fmt.Sprintf("forecast sample %d is missing timestamp or temperature", i))
		}
		sample := models.ForecastSample{
			Time:        time.Unix(*item.Dt, 0).UTC(),
			Temperature: *item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			sample.Condition = models.Condition{
				Main:        item.Weather[0].Main,
				Description: item.Weather[0].Description,
			}
		}
		series.Samples = append(series.Samples, sample)
	}

	return series, nil
}

func (p *OpenWeatherProvider) fetchCurrent(ctx context.Context, query url.Values) (*FetchResult, error) {
	query.Set("appid", p.apiKey)
	query.Set("units", p.units)
	if p.lang != "" {
		query.Set("lang", p.lang)
	}

	result, err := p.fetcher.Do(ctx, fmt.Sprintf("%s/weather?%s", p.baseURL, query.Encode()))
	if err != nil {
		return nil, err
	}
	p.observer.RecordRequest("current")
	return result, nil
}

func (p *OpenWeatherProvider) parseCurrent(result *FetchResult) (*models.WeatherSnapshot, error) {
	var payload openWeatherCurrent
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return nil, errors.NewInvalidResponseError("weather response is not valid JSON")
	}

	if result.StatusCode != http.StatusOK {
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("weather request returned status %d", result.StatusCode)
		}
		return nil, errors.NewExternalAPIError(msg, nil)
	}

	if payload.Coord == nil || payload.Coord.Lat == nil || payload.Coord.Lon == nil {
		return nil, errors.NewInvalidResponseError("weather response has no coordinates")
	}
	lat, lon := *payload.Coord.Lat, *payload.Coord.Lon
	if !isFinite(lat) || !isFinite(lon) {
		return nil, errors.NewInvalidResponseError("weather response coordinates are not finite")
	}
	if payload.Main.Temp == nil {
		return nil, errors.NewInvalidResponseError("weather response has no temperature")
	}
	if len(payload.Weather) == 0 {
		return nil, errors.NewInvalidResponseError("weather response has no condition")
	}

	return &models.WeatherSnapshot{
		Location: models.Location{
			Name:    payload.Name,
			Country: payload.Sys.Country,
			Lat:     lat,
			Lon:     lon,
		},
		Current: models.CurrentConditions{
			Temperature: *payload.Main.Temp,
			FeelsLike:   payload.Main.FeelsLike,
			Humidity:    payload.Main.Humidity,
			PressureHpa: payload.Main.Pressure,
		},
		Condition: models.Condition{
			Main:        payload.Weather[0].Main,
			Description: payload.Weather[0].Description,
		},
	}, nil
}

// isNotFound interprets the upstream's "city not found" signal. OpenWeather
// reports it both via HTTP 404 and a "cod" body field that may be either the
// string "404" or the number 404.
func isNotFound(result *FetchResult) bool {
	if result.StatusCode == http.StatusNotFound {
		return true
	}
	var probe struct {
		Cod json.RawMessage `json:"cod"`
	}
	if err := json.Unmarshal(result.Body, &probe); err != nil {
		return false
	}
	cod := string(bytes.Trim(probe.Cod, `"`))
	return cod == "404"
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatCoord(f float64) string {
	return fmt.Sprintf("%.6f", f)
}
