// Package api wires the HTTP routing for the insights service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/juanmagp80/Clyra-sub003/internal/api/handlers"
	"github.com/juanmagp80/Clyra-sub003/internal/api/middleware"
	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/internal/insights"
	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/internal/notify"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// RouterOptions carries the dependencies of the HTTP layer.
type RouterOptions struct {
	Service  *insights.Service
	Store    storage.Store
	Resolver middleware.SessionResolver
	Reporter *notify.Reporter
	Logger   logging.Logger
	Config   *config.Config
}

// NewRouter builds the chi router with the full middleware stack and all
// API routes.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNoop()
	}

	exposeDetails := true
	var allowedOrigins []string
	if opts.Config != nil {
		exposeDetails = !opts.Config.IsProduction()
		allowedOrigins = opts.Config.Server.AllowedOrigins
	}

	insightsHandler := handlers.NewInsightsHandler(opts.Service, opts.Reporter, logger, exposeDetails)
	healthHandler := handlers.NewHealthHandler(opts.Store, Version)
	cors := middleware.NewCORSMiddleware(middleware.CORSConfig{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	})
	auth := middleware.NewAuthenticator(opts.Resolver, logger)
	requestLogger := middleware.NewRequestLogger(logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(90 * time.Second))
	r.Use(requestLogger.Handler())
	r.Use(cors.Handler())
	r.Use(chimiddleware.Heartbeat("/ping"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Group(func(r chi.Router) {
			r.Use(auth.Handler())
			r.Post("/ai/analyze-performance", insightsHandler.AnalyzePerformance)
			r.Get("/insights", insightsHandler.ListInsights)
		})
	})

	return r
}
