// Package scheduler implements background job scheduling
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"weatherbot.app/service"
)

// Scheduler drives the dispatch service once per minute, aligned to minute
// boundaries so that a subscriber's stored "HH:MM" is matched exactly once
// per day.
type Scheduler struct {
	dispatch service.DispatchServiceInterface
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler around the given dispatch service
func NewScheduler(dispatch service.DispatchServiceInterface) *Scheduler {
	return &Scheduler{
		dispatch: dispatch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the scheduling loop in a background goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop terminates the loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		now := time.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)

		select {
		case <-s.stop:
			return
		case <-time.After(next.Sub(now)):
		}

		s.tick(next)
	}
}

func (s *Scheduler) tick(now time.Time) {
	// A run must not outlive its minute, otherwise a slow upstream would
	// delay every following run.
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Second)
	defer cancel()

	if _, err := s.dispatch.Tick(ctx, now); err != nil {
		slog.Error("scheduled dispatch run failed", "error", err)
	}
}
