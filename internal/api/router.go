// Package api provides the HTTP API for AirSight.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/geocode"
	"github.com/airsight/airsight/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	GeocodeService    *geocode.Service
	AirQualityService *airquality.Service
	ProviderRegistry  *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airsight-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.CallerInfo(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireJSON)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry)
	geocodeHandler := handler.NewGeocodeHandler(cfg.GeocodeService)
	airQualityHandler := handler.NewAirQualityHandler(cfg.AirQualityService)

	batchRateLimit := middleware.RateLimitByIP(middleware.BatchRateLimit)       // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (unlimited)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Single resolve is one upstream lookup - standard rate limiting
		r.With(standardRateLimit).Post("/placenames:resolve", geocodeHandler.ResolvePlacename)

		// Batch resolve fans out to the upstream geocoder - strict rate limiting
		r.With(batchRateLimit).Post("/placenames:resolve-batch", geocodeHandler.ResolveBatch)

		// Air quality readings - standard rate limiting
		r.With(standardRateLimit).Get("/air-quality", airQualityHandler.GetReadings)
	})

	return r
}
