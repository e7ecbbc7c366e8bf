// Package metrics implements the observability collaborator injected into
// the fetch and dispatch pipeline. Request and error tallies roll over on
// calendar boundaries instead of living in module-level counters.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type upstreamCollector struct {
	Requests        *prometheus.CounterVec
	AttemptFailures *prometheus.CounterVec
	Retries         prometheus.Counter
	DispatchSent    prometheus.Counter
	DispatchFailed  prometheus.Counter
	MonthlyRequests prometheus.Gauge
	DailyErrors     prometheus.Gauge
}

var (
	collectorOnce   sync.Once
	globalCollector *upstreamCollector
)

func getCollector() *upstreamCollector {
	collectorOnce.Do(func() {
		globalCollector = &upstreamCollector{
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_upstream_requests_total",
					Help: "The total number of upstream API requests",
				},
				[]string{"endpoint"},
			),
			AttemptFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_upstream_attempt_failures_total",
					Help: "The total number of failed upstream attempts",
				},
				[]string{"reason"},
			),
			Retries: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "weather_upstream_retries_total",
					Help: "The total number of upstream retry attempts",
				},
			),
			DispatchSent: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "weather_dispatch_sent_total",
					Help: "The total number of scheduled reports delivered",
				},
			),
			DispatchFailed: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "weather_dispatch_failed_total",
					Help: "The total number of scheduled reports that failed",
				},
			),
			MonthlyRequests: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "weather_upstream_requests_this_month",
					Help: "Upstream requests in the current calendar month (UTC)",
				},
			),
			DailyErrors: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "weather_errors_today",
					Help: "Errors observed in the current UTC day",
				},
			),
		}
	})
	return globalCollector
}

// UpstreamMetrics tracks upstream usage with explicit period rollover: the
// monthly request tally resets when the UTC month changes, the error tally
// when the UTC day changes.
type UpstreamMetrics struct {
	collector *upstreamCollector
	now       func() time.Time

	mu           sync.Mutex
	requestCount int64
	requestMonth time.Month
	errorCount   int64
	errorDay     string
}

// NewUpstreamMetrics creates a metrics collaborator anchored to the current
// UTC period.
func NewUpstreamMetrics() *UpstreamMetrics {
	return newUpstreamMetricsAt(time.Now)
}

func newUpstreamMetricsAt(now func() time.Time) *UpstreamMetrics {
	n := now().UTC()
	return &UpstreamMetrics{
		collector:    getCollector(),
		now:          now,
		requestMonth: n.Month(),
		errorDay:     n.Format("2006-01-02"),
	}
}

// RecordRequest counts one completed upstream call against the given
// endpoint, rolling the monthly tally over if the month changed.
func (m *UpstreamMetrics) RecordRequest(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if month := m.now().UTC().Month(); month != m.requestMonth {
		m.requestCount = 0
		m.requestMonth = month
	}
	m.requestCount++
	m.collector.Requests.WithLabelValues(endpoint).Inc()
	m.collector.MonthlyRequests.Set(float64(m.requestCount))
}

// RecordAttemptFailure counts one failed fetch attempt by reason
// ("timeout", "network", "status").
func (m *UpstreamMetrics) RecordAttemptFailure(reason string) {
	m.collector.AttemptFailures.WithLabelValues(reason).Inc()
	m.recordError()
}

// RecordRetry counts one retry of a failed attempt.
func (m *UpstreamMetrics) RecordRetry() {
	m.collector.Retries.Inc()
}

// RecordDispatch counts delivery outcomes of one dispatch run.
func (m *UpstreamMetrics) RecordDispatch(sent, failed int) {
	m.collector.DispatchSent.Add(float64(sent))
	m.collector.DispatchFailed.Add(float64(failed))
	for i := 0; i < failed; i++ {
		m.recordError()
	}
}

func (m *UpstreamMetrics) recordError() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if day := m.now().UTC().Format("2006-01-02"); day != m.errorDay {
		m.errorCount = 0
		m.errorDay = day
	}
	m.errorCount++
	m.collector.DailyErrors.Set(float64(m.errorCount))
}

// MonthlyRequestCount returns the request tally of the current month.
func (m *UpstreamMetrics) MonthlyRequestCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if month := m.now().UTC().Month(); month != m.requestMonth {
		return 0
	}
	return m.requestCount
}

// DailyErrorCount returns the error tally of the current UTC day.
func (m *UpstreamMetrics) DailyErrorCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if day := m.now().UTC().Format("2006-01-02"); day != m.errorDay {
		return 0
	}
	return m.errorCount
}
