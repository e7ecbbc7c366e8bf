package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "weatherbot.app/errors"
	"weatherbot.app/models"
)

type mockWeather struct {
	snapshots map[string]*models.WeatherSnapshot
	calls     []string
}

func (m *mockWeather) GetCurrentByName(_ context.Context, city string) (*models.WeatherSnapshot, error) {
	m.calls = append(m.calls, city)
	if s, ok := m.snapshots[city]; ok {
		return s, nil
	}
	return nil, apperrors.NewNotFoundError("place not found: " + city)
}

func (m *mockWeather) GetCurrentByCoords(_ context.Context, _, _ float64) (*models.WeatherSnapshot, error) {
	return nil, apperrors.NewNotFoundError("not used")
}

func (m *mockWeather) GetForecast(_ context.Context, _, _ float64, _ int) (*models.ForecastReport, error) {
	return nil, apperrors.NewNotFoundError("not used")
}

type mockNotifier struct {
	failFor  map[string]bool
	messages map[string]string
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{failFor: make(map[string]bool), messages: make(map[string]string)}
}

func (m *mockNotifier) Notify(_ context.Context, userID, text string) error {
	if m.failFor[userID] {
		return apperrors.NewNotificationError("delivery refused", nil)
	}
	m.messages[userID] = text
	return nil
}

type mockDispatchObserver struct {
	sent   int
	failed int
	runs   int
}

func (m *mockDispatchObserver) RecordDispatch(sent, failed int) {
	m.sent += sent
	m.failed += failed
	m.runs++
}

func TestDispatchService_Tick(t *testing.T) {
	repo := newMockRepo()
	require.NoError(t, repo.SetHomeCity("user-1", "London"))
	require.NoError(t, repo.SetDailyTime("user-1", "08:00"))
	require.NoError(t, repo.SetHomeCity("user-2", "Paris"))
	require.NoError(t, repo.SetDailyTime("user-2", "08:01"))
	require.NoError(t, repo.SetDailyTime("user-3", "08:00")) // no home city

	weather := &mockWeather{snapshots: map[string]*models.WeatherSnapshot{"London": londonSnapshot()}}
	notifier := newMockNotifier()
	observer := &mockDispatchObserver{}
	svc := NewDispatchService(repo, weather, notifier, observer)

	now := time.Date(2025, 5, 1, 8, 0, 30, 0, time.UTC)
	report, err := svc.Tick(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, "08:00", report.Time)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []string{"London"}, weather.calls)
	assert.Contains(t, notifier.messages["user-1"], "London")
	assert.Equal(t, 1, observer.runs)
	assert.Equal(t, 1, observer.sent)
}

func TestDispatchService_Tick_FailuresAreCountedAndSkipped(t *testing.T) {
	repo := newMockRepo()
	require.NoError(t, repo.SetHomeCity("user-1", "Atlantis")) // fetch fails
	require.NoError(t, repo.SetDailyTime("user-1", "06:00"))
	require.NoError(t, repo.SetHomeCity("user-2", "London")) // delivery fails
	require.NoError(t, repo.SetDailyTime("user-2", "06:00"))
	require.NoError(t, repo.SetHomeCity("user-3", "London")) // succeeds
	require.NoError(t, repo.SetDailyTime("user-3", "06:00"))

	weather := &mockWeather{snapshots: map[string]*models.WeatherSnapshot{"London": londonSnapshot()}}
	notifier := newMockNotifier()
	notifier.failFor["user-2"] = true
	observer := &mockDispatchObserver{}
	svc := NewDispatchService(repo, weather, notifier, observer)

	report, err := svc.Tick(context.Background(), time.Date(2025, 5, 1, 6, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, observer.failed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "user-3", report.Results[0].UserID)
}

func TestDispatchService_Tick_StoreFailureAbortsRun(t *testing.T) {
	repo := newMockRepo()
	repo.listErr = apperrors.NewDatabaseError("connection lost", nil)
	weather := &mockWeather{}
	observer := &mockDispatchObserver{}
	svc := NewDispatchService(repo, weather, newMockNotifier(), observer)

	report, err := svc.Tick(context.Background(), time.Now())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Empty(t, weather.calls)
	assert.Zero(t, observer.runs)
}

func TestDispatchService_Tick_NoCandidates(t *testing.T) {
	repo := newMockRepo()
	weather := &mockWeather{}
	svc := NewDispatchService(repo, weather, newMockNotifier(), &mockDispatchObserver{})

	report, err := svc.Tick(context.Background(), time.Date(2025, 5, 1, 3, 15, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "03:15", report.Time)
	assert.Zero(t, report.Sent)
	assert.Zero(t, report.Failed)
	assert.Empty(t, weather.calls)
}
