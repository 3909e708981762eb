// Package api exposes a Retriever and the dataset statistics over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/botirk38/playersim"
	"github.com/botirk38/playersim/internal/metrics"
	"github.com/botirk38/playersim/stats"
	"github.com/botirk38/playersim/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Retriever is the retrieval surface the handlers need.
type Retriever interface {
	Retrieve(ctx context.Context, name string, cfg types.FilterConfig) (*playersim.Response, error)
	Profile(name string) (types.PlayerProfile, error)
	Names() []string
	Positions() []string
	Competitions() []string
}

// Config holds HTTP behaviour settings.
type Config struct {
	CORSOrigins    []string
	RateLimit      int
	RequestTimeout time.Duration
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	retriever Retriever
	records   []types.PlayerRecord
	global    stats.Global
	defaults  types.FilterConfig
	logger    zerolog.Logger
}

// NewHandler creates a new handler. defaults fill the fields a similarity
// request leaves out. Global statistics are computed once.
func NewHandler(retriever Retriever, records []types.PlayerRecord, defaults types.FilterConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		retriever: retriever,
		records:   records,
		global:    stats.Compute(records),
		defaults:  defaults,
		logger:    logger,
	}
}

// NewRouter builds the chi router with middleware and every route.
func NewRouter(h *Handler, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}

		r.Get("/players", h.ListPlayers)
		r.Get("/players/{name}", h.GetPlayer)
		r.Get("/options", h.GetOptions)
		r.Post("/similar", h.FindSimilar)

		r.Get("/stats", h.GlobalStats)
		r.Get("/stats/players/{name}", h.PlayerStats)
		r.Get("/stats/teams/{name}", h.TeamStats)
	})

	return r
}

// requestLogger logs each request and records its metrics under the
// matched route pattern.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), duration)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Dur("duration", duration).
				Msg("request")
		})
	}
}
