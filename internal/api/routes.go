// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ml-punto-tech/sentiment-api/internal/predictor"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Predictor     predictor.Predictor
	Batch         BatchProcessor
	Jobs          JobQueue
	Stats         StatsProvider
	Model         ModelChecker
	Store         Pinger
	Validator     *RequestValidator
	MinTextLength int
	Version       string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Sentiment SentimentHandler
	Batch     BatchHandler
	Stats     StatsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	v := deps.Validator
	if v == nil {
		v = NewRequestValidator()
	}
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Model, deps.Store),
		Sentiment: NewSentimentHandler(deps.Predictor, v, deps.MinTextLength),
		Batch:     NewBatchHandler(deps.Batch, deps.Jobs),
		Stats:     NewStatsHandler(deps.Stats),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check and metrics
	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	sentiment := e.Group("/api/v1/sentiment")
	sentiment.POST("", handlers.Sentiment.HandlePredict)
	sentiment.GET("/stats", handlers.Stats.HandleStats)

	// File batch routes
	sentiment.POST("/batch", handlers.Batch.HandleBatch)
	sentiment.POST("/batch/jobs", handlers.Batch.HandleStartJob)
	sentiment.GET("/batch/jobs/:jobId", handlers.Batch.HandleGetJob)
}

// MiddlewareConfig configures SetupMiddleware.
type MiddlewareConfig struct {
	EnableCORS           bool
	AllowOrigins         []string
	CORSMaxAge           int
	MaxRequestBytes      int64
	EnableCompression    bool
	CompressionLevel     int
	EnableRequestLogging bool
}

// skipProbes skips health checks and metric scrapes.
func skipProbes(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == "/health" || path == "/metrics"
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	// Use custom error handler
	e.HTTPErrorHandler = NewErrorHandler(logger)
	e.Validator = NewRequestValidator()

	if cfg.EnableRequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper:     skipProbes,
			LogMethod:   true,
			LogURI:      true,
			LogStatus:   true,
			LogLatency:  true,
			LogRemoteIP: true,
			LogError:    true,
			HandleError: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				level := slog.LevelInfo
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				} else if v.Status >= http.StatusBadRequest {
					level = slog.LevelWarn
				}
				attrs := []slog.Attr{
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
					slog.String("remote_ip", v.RemoteIP),
				}
				if v.Error != nil {
					attrs = append(attrs, slog.String("error", v.Error.Error()))
				}
				logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
				return nil
			},
		}))
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				"path", c.Request().URL.Path,
				"error", err,
				"stack", string(stack))
			return err
		},
	}))

	if cfg.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			MaxAge:       cfg.CORSMaxAge,
		}))
	}

	if cfg.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				// Don't compress msgpack (already compact)
				return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack)
			},
		}))
	}

	if cfg.MaxRequestBytes > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.MaxRequestBytes)))
	}
}
