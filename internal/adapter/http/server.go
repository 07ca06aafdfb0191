package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/pipeline"
)

// Atlas is the query surface the API serves.
type Atlas interface {
	sharedobs.ReadinessChecker
	Info() (pipeline.Info, error)
	AggregatesForYear(year int) (domain.YearlyAggregate, error)
	AggregateSeries() ([]domain.YearlyAggregate, error)
	Snapshot(ctx context.Context, year int) (domain.Snapshot, error)
	Normalize(metric domain.Metric, raw float64) (float64, error)
	ProjectPath(req domain.PathRequest) (domain.Path, error)
	DataCenters(year int) ([]domain.DataCenter, error)
}

// Server exposes the atlas API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	atlas      Atlas
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 routes.
func NewServer(addr string, atlas Atlas, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		atlas:  atlas,
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(atlas))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(requestLogger(logger))
		r.Use(middleware.Recoverer)
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/dataset", s.handleDataset)
		r.Get("/aggregates", s.handleAggregateSeries)
		r.Get("/aggregates/{year}", s.handleAggregates)
		r.Get("/snapshots/{year}", s.handleSnapshot)
		r.Get("/normalize/{metric}", s.handleNormalize)
		r.Get("/datacenters", s.handleDataCenters)
		r.Get("/timeline", s.handleTimeline)
		r.Post("/paths", s.handlePath)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
