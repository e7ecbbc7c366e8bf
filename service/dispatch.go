package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"weatherbot.app/models"
	"weatherbot.app/providers"
)

// DispatchService decides which subscribers receive a report "now" and
// delivers it. Each run is a fresh evaluation at minute granularity:
// invoking it twice within the same UTC minute yields the same candidate
// set, and deduplication is the sender's responsibility.
type DispatchService struct {
	repo     SubscriberRepositoryInterface
	weather  WeatherServiceInterface
	notifier providers.Notifier
	observer DispatchObserver
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	repo SubscriberRepositoryInterface,
	weather WeatherServiceInterface,
	notifier providers.Notifier,
	observer DispatchObserver,
) *DispatchService {
	if notifier == nil {
		notifier = providers.LogNotifier{}
	}
	return &DispatchService{
		repo:     repo,
		weather:  weather,
		notifier: notifier,
		observer: observer,
	}
}

// Tick runs one dispatch evaluation for the given instant. A store failure
// aborts the whole run (it is retried on the next trigger); a fetch or
// delivery failure for one subscriber is counted and skipped without
// affecting the rest.
func (s *DispatchService) Tick(ctx context.Context, now time.Time) (*models.DispatchReport, error) {
	report := &models.DispatchReport{
		RunID: uuid.New().String(),
		Time:  now.UTC().Format("15:04"),
	}

	candidates, err := s.repo.ListDispatchCandidates(report.Time)
	if err != nil {
		slog.Error("dispatch run aborted: store failure", "run_id", report.RunID, "error", err)
		return nil, err
	}

	for _, candidate := range candidates {
		snapshot, err := s.weather.GetCurrentByName(ctx, candidate.City)
		if err != nil {
			slog.Error("dispatch fetch failed",
				"run_id", report.RunID, "user_id", candidate.UserID,
				"city", candidate.City, "error", err)
			report.Failed++
			continue
		}

		text := fmt.Sprintf("📆 Daily weather:\n%s", snapshot.Summary())
		if err := s.notifier.Notify(ctx, candidate.UserID, text); err != nil {
			slog.Error("dispatch delivery failed",
				"run_id", report.RunID, "user_id", candidate.UserID, "error", err)
			report.Failed++
			continue
		}

		report.Sent++
		report.Results = append(report.Results, models.DispatchResult{
			UserID:   candidate.UserID,
			City:     candidate.City,
			Snapshot: snapshot,
		})
	}

	if s.observer != nil {
		s.observer.RecordDispatch(report.Sent, report.Failed)
	}
	if report.Sent > 0 || report.Failed > 0 {
		slog.Info("dispatch run finished",
			"run_id", report.RunID, "time", report.Time,
			"sent", report.Sent, "failed", report.Failed)
	}
	return report, nil
}
