// Package api serves read-only strategy results and price series over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gmdcjdakdcjd/stockbatch/internal/api/handlers"
	"github.com/gmdcjdakdcjd/stockbatch/internal/api/middleware"
)

// Config 라우터 의존성
type Config struct {
	AllowedOrigins []string // 비어 있으면 "*"
	AccessLogger   *zerolog.Logger

	Health   *handlers.HealthHandler
	Strategy *handlers.StrategyHandler
	Price    *handlers.PriceHandler
	FetchLog *handlers.FetchLogHandler
}

// NewRouter creates the HTTP handler with middlewares and routes
func NewRouter(cfg Config) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(middleware.LoggingConfig{
		AccessLogger: cfg.AccessLogger,
		SkipPaths:    []string{"/health"},
	}))

	r.HandleFunc("/health", cfg.Health.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Strategy results
	v1.HandleFunc("/strategies/results", cfg.Strategy.ListResults).Methods(http.MethodGet)
	v1.HandleFunc("/strategies/results/{id}", cfg.Strategy.GetResult).Methods(http.MethodGet)
	v1.HandleFunc("/strategies/{name}/latest", cfg.Strategy.Latest).Methods(http.MethodGet)

	// Market data
	v1.HandleFunc("/prices/{market}/{code}", cfg.Price.GetSeries).Methods(http.MethodGet)
	v1.HandleFunc("/instruments/{market}/{query}", cfg.Price.GetInstrument).Methods(http.MethodGet)

	// Ingest history
	v1.HandleFunc("/fetch-logs", cfg.FetchLog.Recent).Methods(http.MethodGet)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.AllowedOrigins
		cors.AllowCredentials = true
	}
	return middleware.CORS(cors)(r)
}
