package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	"weatherbot.app/config"
	apperr "weatherbot.app/errors"
	"weatherbot.app/models"
	"weatherbot.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router              *gin.Engine
	db                  *gorm.DB
	config              *config.Config
	weatherService      service.WeatherServiceInterface
	subscriptionService service.SubscriptionServiceInterface
	dispatchService     service.DispatchServiceInterface
}

// NewServer creates and configures a new HTTP server
func NewServer(
	db *gorm.DB,
	config *config.Config,
	weatherService service.WeatherServiceInterface,
	subscriptionService service.SubscriptionServiceInterface,
	dispatchService service.DispatchServiceInterface,
) *Server {
	router := gin.Default()

	server := &Server{
		router:              router,
		db:                  db,
		config:              config,
		weatherService:      weatherService,
		subscriptionService: subscriptionService,
		dispatchService:     dispatchService,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/weather", s.getWeather)
		api.GET("/weather/coords", s.getWeatherByCoords)
		api.GET("/forecast", s.getForecast)
		api.PUT("/subscribers/:userID/home", s.setHomeCity)
		api.PUT("/subscribers/:userID/daily-time", s.setDailyTime)
		api.GET("/subscribers/:userID", s.getSubscriber)
		api.POST("/dispatch/trigger", s.triggerDispatch)
		api.GET("/health", s.health)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) getWeather(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		s.handleError(c, apperr.NewValidationError("city parameter is required"))
		return
	}

	weather, err := s.weatherService.GetCurrentByName(c.Request.Context(), city)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, weather)
}

func (s *Server) getWeatherByCoords(c *gin.Context) {
	lat, lon, err := coordParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	weather, err := s.weatherService.GetCurrentByCoords(c.Request.Context(), lat, lon)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, weather)
}

func (s *Server) getForecast(c *gin.Context) {
	lat, lon, err := coordParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 {
			s.handleError(c, apperr.NewValidationError("days must be a positive integer"))
			return
		}
	}

	report, err := s.weatherService.GetForecast(c.Request.Context(), lat, lon, days)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) setHomeCity(c *gin.Context) {
	userID := c.Param("userID")

	var req models.SetHomeCityRequest
	if err := c.ShouldBind(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	if err := s.subscriptionService.SetHomeCity(userID, req.City); err != nil {
		slog.Error("set home city", "user_id", userID, "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Home city saved"})
}

func (s *Server) setDailyTime(c *gin.Context) {
	userID := c.Param("userID")

	var req models.SetDailyTimeRequest
	if err := c.ShouldBind(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	utcTime, err := s.subscriptionService.SetDailyTime(userID, req.Time, req.UTCOffsetSeconds)
	if err != nil {
		slog.Error("set daily time", "user_id", userID, "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Daily delivery time saved",
		"daily_time_utc": utcTime,
	})
}

func (s *Server) getSubscriber(c *gin.Context) {
	userID := c.Param("userID")

	subscriber, err := s.subscriptionService.GetSubscriber(userID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscriber)
}

// triggerDispatch runs one dispatch evaluation for the current minute. It
// exists for operators; the scheduler calls the same code path every minute.
func (s *Server) triggerDispatch(c *gin.Context) {
	report, err := s.dispatchService.Tick(c.Request.Context(), time.Now())
	if err != nil {
		slog.Error("manual dispatch trigger failed", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) health(c *gin.Context) {
	status := gin.H{"status": "ok"}

	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}

	c.JSON(http.StatusOK, status)
}

func coordParams(c *gin.Context) (float64, float64, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return 0, 0, apperr.NewValidationError("lat must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return 0, 0, apperr.NewValidationError("lon must be a number")
	}
	return lat, lon, nil
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *apperr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case apperr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case apperr.TimeoutError, apperr.NetworkError, apperr.ExternalAPIError, apperr.InvalidResponseError:
			statusCode = http.StatusBadGateway
			message = "Upstream weather service unavailable"
		case apperr.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		case apperr.NotificationError:
			statusCode = http.StatusBadGateway
			message = "Unable to deliver notification"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
