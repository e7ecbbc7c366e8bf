package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"weatherbot.app/models"
)

// FileRequestLogger appends upstream exchange records as JSON lines.
type FileRequestLogger struct {
	filePath string
	mutex    sync.Mutex
}

// NewFileRequestLogger creates a request logger writing to logPath.
func NewFileRequestLogger(logPath string) (*FileRequestLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &FileRequestLogger{filePath: logPath}, nil
}

func (l *FileRequestLogger) LogRequest(operation, target string) {
	l.writeLog(map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"event":     "request",
		"operation": operation,
		"target":    RedactSecrets(target),
	})
}

func (l *FileRequestLogger) LogSuccess(operation, target string, duration time.Duration) {
	l.writeLog(map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"event":       "success",
		"operation":   operation,
		"target":      RedactSecrets(target),
		"duration_ms": duration.Milliseconds(),
	})
}

func (l *FileRequestLogger) LogError(operation, target string, err error, duration time.Duration) {
	l.writeLog(map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"event":       "error",
		"operation":   operation,
		"target":      RedactSecrets(target),
		"duration_ms": duration.Milliseconds(),
		"error":       RedactSecrets(err.Error()),
	})
}

func (l *FileRequestLogger) writeLog(entry map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	file, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("open request log file", "error", err)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("close request log file", "error", closeErr)
		}
	}()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		slog.Error("marshal request log entry", "error", err)
		return
	}

	if _, err := file.Write(append(jsonData, '\n')); err != nil {
		slog.Error("write request log entry", "error", err)
	}
}

// LoggingProvider decorates a WeatherProvider with per-operation request
// logging.
type LoggingProvider struct {
	wrapped WeatherProvider
	logger  RequestLogger
}

// NewLoggingProvider wraps provider so every operation is recorded through
// logger.
func NewLoggingProvider(provider WeatherProvider, logger RequestLogger) WeatherProvider {
	return &LoggingProvider{wrapped: provider, logger: logger}
}

func (d *LoggingProvider) CurrentByName(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	return d.observe("current_by_name", city, func() (*models.WeatherSnapshot, error) {
		return d.wrapped.CurrentByName(ctx, city)
	})
}

func (d *LoggingProvider) CurrentByCoords(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	target := fmt.Sprintf("%.4f,%.4f", lat, lon)
	return d.observe("current_by_coords", target, func() (*models.WeatherSnapshot, error) {
		return d.wrapped.CurrentByCoords(ctx, lat, lon)
	})
}

func (d *LoggingProvider) ForecastByCoords(ctx context.Context, lat, lon float64) (*models.RawForecastSeries, error) {
	target := fmt.Sprintf("%.4f,%.4f", lat, lon)
	d.logger.LogRequest("forecast_by_coords", target)
	start := time.Now()

	series, err := d.wrapped.ForecastByCoords(ctx, lat, lon)
	if err != nil {
		d.logger.LogError("forecast_by_coords", target, err, time.Since(start))
		return nil, err
	}
	d.logger.LogSuccess("forecast_by_coords", target, time.Since(start))
	return series, nil
}

func (d *LoggingProvider) observe(operation, target string, call func() (*models.WeatherSnapshot, error)) (*models.WeatherSnapshot, error) {
	d.logger.LogRequest(operation, target)
	start := time.Now()

	snapshot, err := call()
	if err != nil {
		d.logger.LogError(operation, target, err, time.Since(start))
		return nil, err
	}
	d.logger.LogSuccess(operation, target, time.Since(start))
	return snapshot, nil
}
