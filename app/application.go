// Package app wires configuration, storage, providers and services into a
// runnable application.
package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"weatherbot.app/api"
	"weatherbot.app/config"
	"weatherbot.app/database"
	"weatherbot.app/forecast"
	"weatherbot.app/metrics"
	"weatherbot.app/providers"
	"weatherbot.app/repository"
	"weatherbot.app/scheduler"
	"weatherbot.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing database...", "driver", app.config.Database.Driver)

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	upstreamMetrics := metrics.NewUpstreamMetrics()

	provider, err := app.createProvider(upstreamMetrics)
	if err != nil {
		return fmt.Errorf("create weather provider: %w", err)
	}

	weatherService := service.NewWeatherService(
		provider,
		app.config.Weather.ForecastDays,
		forecast.Policy(app.config.Weather.ForecastPolicy),
	)

	subscriberRepo := repository.NewSubscriberRepository(app.db)
	subscriptionService := service.NewSubscriptionService(subscriberRepo)

	var notifier providers.Notifier
	if app.config.Dispatch.SenderURL != "" {
		notifier = providers.NewWebhookNotifier(app.config.Dispatch.SenderURL)
	}
	dispatchService := service.NewDispatchService(subscriberRepo, weatherService, notifier, upstreamMetrics)

	app.server = api.NewServer(app.db, app.config, weatherService, subscriptionService, dispatchService)
	if app.config.Dispatch.Enabled {
		app.scheduler = scheduler.NewScheduler(dispatchService)
	}

	return nil
}

// createProvider builds the upstream client with its resilience and
// observability layers: retrying fetcher inside, request logging outside.
func (app *Application) createProvider(observer providers.FetchObserver) (providers.WeatherProvider, error) {
	fetcher := providers.NewFetcher(providers.FetcherOptions{
		Timeout:    app.config.Weather.Timeout(),
		MaxRetries: app.config.Weather.MaxRetries,
		BaseDelay:  app.config.Weather.BackoffBase(),
	}, observer)

	provider := providers.NewOpenWeatherProvider(providers.OpenWeatherConfig{
		APIKey:  app.config.Weather.APIKey,
		BaseURL: app.config.Weather.BaseURL,
		Units:   app.config.Weather.Units,
		Lang:    app.config.Weather.Lang,
	}, fetcher, observer)

	if app.config.Weather.RequestLogPath == "" {
		return provider, nil
	}

	requestLogger, err := providers.NewFileRequestLogger(app.config.Weather.RequestLogPath)
	if err != nil {
		return nil, err
	}
	return providers.NewLoggingProvider(provider, requestLogger), nil
}

// Start starts the application
func (app *Application) Start() error {
	if app.scheduler != nil {
		slog.Info("Starting dispatch scheduler...")
		app.scheduler.Start()
	}

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
