package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "weatherbot.app/errors"
	"weatherbot.app/forecast"
	"weatherbot.app/models"
)

type mockProvider struct {
	snapshots map[string]*models.WeatherSnapshot
	series    *models.RawForecastSeries
	err       error
	calls     []string
}

func (m *mockProvider) CurrentByName(_ context.Context, city string) (*models.WeatherSnapshot, error) {
	m.calls = append(m.calls, "name:"+city)
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.snapshots[city]; ok {
		return s, nil
	}
	return nil, apperrors.NewNotFoundError("place not found: " + city)
}

func (m *mockProvider) CurrentByCoords(_ context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	m.calls = append(m.calls, "coords")
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.snapshots {
		return s, nil
	}
	return nil, apperrors.NewNotFoundError("no weather for coordinates")
}

func (m *mockProvider) ForecastByCoords(_ context.Context, lat, lon float64) (*models.RawForecastSeries, error) {
	m.calls = append(m.calls, "forecast")
	if m.err != nil {
		return nil, m.err
	}
	return m.series, nil
}

type mockRepo struct {
	subscribers map[string]*models.Subscriber
	listErr     error
	writeErr    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{subscribers: make(map[string]*models.Subscriber)}
}

func (m *mockRepo) FindByUserID(userID string) (*models.Subscriber, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.subscribers[userID], nil
}

func (m *mockRepo) SetHomeCity(userID, city string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	s := m.subscribers[userID]
	if s == nil {
		s = &models.Subscriber{UserID: userID}
		m.subscribers[userID] = s
	}
	s.HomeCity = city
	return nil
}

func (m *mockRepo) GetHomeCity(userID string) (string, error) {
	if s := m.subscribers[userID]; s != nil {
		return s.HomeCity, nil
	}
	return "", nil
}

func (m *mockRepo) GetDailyTime(userID string) (string, error) {
	if s := m.subscribers[userID]; s != nil {
		return s.DailyTimeUTC, nil
	}
	return "", nil
}

func (m *mockRepo) SetDailyTime(userID, timeUTC string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	s := m.subscribers[userID]
	if s == nil {
		s = &models.Subscriber{UserID: userID}
		m.subscribers[userID] = s
	}
	s.DailyTimeUTC = timeUTC
	return nil
}

func (m *mockRepo) ListDispatchCandidates(nowUTC string) ([]models.DispatchCandidate, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var candidates []models.DispatchCandidate
	for _, s := range m.subscribers {
		if s.DailyTimeUTC == nowUTC && s.HomeCity != "" {
			candidates = append(candidates, models.DispatchCandidate{UserID: s.UserID, City: s.HomeCity})
		}
	}
	return candidates, nil
}

func londonSnapshot() *models.WeatherSnapshot {
	return &models.WeatherSnapshot{
		Location:  models.Location{Name: "London", Country: "GB", Lat: 51.5, Lon: -0.12},
		Current:   models.CurrentConditions{Temperature: 11, FeelsLike: 10, Humidity: 87, PressureHpa: 1008},
		Condition: models.Condition{Main: "Rain", Description: "light rain"},
	}
}

func TestWeatherService_GetForecast(t *testing.T) {
	day1 := time.Date(2025, 5, 1, 6, 0, 0, 0, time.UTC)
	provider := &mockProvider{
		series: &models.RawForecastSeries{
			CityName: "London",
			Samples: []models.ForecastSample{
				{Time: day1, Temperature: 10, Condition: models.Condition{Main: "Rain"}},
				{Time: day1.Add(3 * time.Hour), Temperature: 14, Condition: models.Condition{Main: "Clouds"}},
				{Time: day1.AddDate(0, 0, 1), Temperature: 18, Condition: models.Condition{Main: "Clear"}},
			},
		},
	}
	svc := NewWeatherService(provider, 5, forecast.PolicyMean)

	report, err := svc.GetForecast(context.Background(), 51.5, -0.12, 0)

	require.NoError(t, err)
	assert.Equal(t, "London", report.CityName)
	require.Len(t, report.Days, 2)
	assert.Equal(t, 12.0, report.Days[0].Temperature)
	assert.Equal(t, 18.0, report.Days[1].Temperature)
}

func TestWeatherService_GetCurrentByName_EmptyCity(t *testing.T) {
	svc := NewWeatherService(&mockProvider{}, 5, forecast.PolicyMean)

	_, err := svc.GetCurrentByName(context.Background(), "  ")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubscriptionService_SetDailyTime(t *testing.T) {
	tests := []struct {
		name          string
		localTime     string
		offsetSeconds int
		expectedUTC   string
		expectError   bool
	}{
		{
			name:          "UTCPlusThree",
			localTime:     "08:00",
			offsetSeconds: 3 * 3600,
			expectedUTC:   "05:00",
		},
		{
			name:          "UTCMinusFive",
			localTime:     "08:00",
			offsetSeconds: -5 * 3600,
			expectedUTC:   "13:00",
		},
		{
			name:          "WrapsPastMidnight",
			localTime:     "01:30",
			offsetSeconds: 3 * 3600,
			expectedUTC:   "22:30",
		},
		{
			name:          "ZeroOffset",
			localTime:     "23:59",
			offsetSeconds: 0,
			expectedUTC:   "23:59",
		},
		{
			name:          "HalfHourOffset",
			localTime:     "09:00",
			offsetSeconds: 5*3600 + 1800, // UTC+5:30
			expectedUTC:   "03:30",
		},
		{
			name:        "RejectsUnpadded",
			localTime:   "8:00",
			expectError: true,
		},
		{
			name:        "RejectsOutOfRangeHour",
			localTime:   "24:00",
			expectError: true,
		},
		{
			name:        "RejectsGarbage",
			localTime:   "soon",
			expectError: true,
		},
		{
			name:          "RejectsAbsurdOffset",
			localTime:     "08:00",
			offsetSeconds: 20 * 3600,
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			svc := NewSubscriptionService(repo)

			stored, err := svc.SetDailyTime("user-1", tt.localTime, tt.offsetSeconds)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedUTC, stored)
			assert.Equal(t, tt.expectedUTC, repo.subscribers["user-1"].DailyTimeUTC)
		})
	}
}

func TestSubscriptionService_GetSubscriber(t *testing.T) {
	repo := newMockRepo()
	svc := NewSubscriptionService(repo)

	t.Run("Missing", func(t *testing.T) {
		_, err := svc.GetSubscriber("ghost")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Found", func(t *testing.T) {
		require.NoError(t, svc.SetHomeCity("user-1", "London"))

		resp, err := svc.GetSubscriber("user-1")
		require.NoError(t, err)
		assert.Equal(t, "London", resp.HomeCity)
	})
}
