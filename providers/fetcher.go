package providers

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/sony/gobreaker"
	"weatherbot.app/errors"
)

// FetchResult is the outcome of a transport-successful upstream exchange.
// Any HTTP status is a valid result here: interpreting a 404 as "place not
// found" is the caller's business decision, not a transport fault.
type FetchResult struct {
	StatusCode int
	Body       []byte
}

// FetcherOptions bundles resilience settings for the upstream fetcher.
type FetcherOptions struct {
	Timeout    time.Duration // per-attempt deadline
	MaxRetries int           // additional attempts after the first
	BaseDelay  time.Duration // backoff is BaseDelay * 2^attempt
}

// Fetcher wraps a single upstream HTTP call with a per-attempt deadline,
// exponential-backoff retry and a circuit breaker. Transport faults and 5xx
// responses are retried; every other status is returned to the caller.
type Fetcher struct {
	client   *http.Client
	opts     FetcherOptions
	breaker  *gobreaker.CircuitBreaker
	observer FetchObserver
}

// NewFetcher creates a resilient fetcher. A nil observer disables attempt
// reporting.
func NewFetcher(opts FetcherOptions, observer FetchObserver) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if observer == nil {
		observer = nopObserver{}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "weather-upstream",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 8
		},
		Timeout: 30 * time.Second,
	})

	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		breaker:  breaker,
		observer: observer,
	}
}

// Do performs the request with up to MaxRetries retries. The returned error
// is the last observed failure tagged with the attempt count.
func (f *Fetcher) Do(ctx context.Context, rawURL string) (*FetchResult, error) {
	attempts := f.opts.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			f.observer.RecordRetry()
			delay := f.opts.BaseDelay * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return nil, errors.NewTimeoutError("canceled while waiting to retry", ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := f.attempt(ctx, rawURL)
		if err == nil {
			return result, nil
		}

		slog.Warn("upstream attempt failed",
			"url", RedactSecrets(rawURL),
			"attempt", attempt+1,
			"attempts", attempts,
			"error", err)

		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewExternalAPIError("upstream circuit breaker open", err)
		}
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError("request canceled", ctx.Err())
		}
		lastErr = err
	}

	return nil, f.tagAttempts(lastErr, attempts)
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string) (*FetchResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	result, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errors.NewNetworkError("build upstream request", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			if stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				f.observer.RecordAttemptFailure("timeout")
				return nil, errors.NewTimeoutError(
					fmt.Sprintf("upstream did not respond within %s", f.opts.Timeout), err)
			}
			f.observer.RecordAttemptFailure("network")
			return nil, errors.NewNetworkError("upstream request failed", err)
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				slog.Warn("close response body", "error", closeErr)
			}
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			f.observer.RecordAttemptFailure("network")
			return nil, errors.NewNetworkError("read upstream response", err)
		}

		// 5xx and rate limiting are transient transport-level faults.
		if resp.StatusCode >= http.StatusInternalServerError ||
			resp.StatusCode == http.StatusTooManyRequests {
			f.observer.RecordAttemptFailure("status")
			return nil, errors.NewExternalAPIError(
				fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
		}

		return &FetchResult{StatusCode: resp.StatusCode, Body: body}, nil
	})
	if err != nil {
		return nil, err
	}

	fetchResult, ok := result.(*FetchResult)
	if !ok {
		return nil, errors.NewExternalAPIError("unexpected result type from circuit breaker", nil)
	}
	return fetchResult, nil
}

// tagAttempts rewraps the terminal failure so the caller sees how many
// attempts were spent, preserving the original error type.
func (f *Fetcher) tagAttempts(lastErr error, attempts int) error {
	errType := errors.ExternalAPIError
	var appErr *errors.AppError
	if stderrors.As(lastErr, &appErr) {
		errType = appErr.Type
	}
	return errors.Wrap(errType,
		fmt.Sprintf("upstream request failed after %d attempts", attempts), lastErr)
}

var secretParamPattern = regexp.MustCompile(`(?i)\b(appid|api_key|apikey|key|token|access_token)=[^&\s]*`)

// RedactSecrets masks credential query parameters before a URL reaches any
// log or observability sink.
func RedactSecrets(s string) string {
	return secretParamPattern.ReplaceAllString(s, "$1=***REDACTED***")
}

type nopObserver struct{}

func (nopObserver) RecordRequest(string)        {}
func (nopObserver) RecordAttemptFailure(string) {}
func (nopObserver) RecordRetry()                {}
