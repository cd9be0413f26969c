// Package api serves release note analysis over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/cache"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/metrics"
	"github.com/moolen/upgradelens/internal/patterns"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultMaxBodyBytes     = 1 << 20
	DefaultBatchConcurrency = 4
	MaxBatchDocuments       = 100
)

// Options configures a Server.
type Options struct {
	Port             int
	MaxBodyBytes     int64
	BatchConcurrency int

	// Cache is optional.
	Cache *cache.ResultCache

	// Registry receives the server metrics and backs /metrics. A private
	// registry is created when nil.
	Registry *prometheus.Registry

	// Tracer is optional and wraps each request in a span.
	Tracer trace.Tracer

	// MCPHandler is mounted at MCPEndpoint when set.
	MCPHandler  http.Handler
	MCPEndpoint string
}

// Server is the HTTP front end of the analysis engine. It implements
// lifecycle.Component.
type Server struct {
	holder  *analysis.Holder
	opts    Options
	cache   *cache.ResultCache
	metrics *metrics.Metrics
	logger  *logging.Logger
	router  chi.Router
	server  *http.Server
	errCh   chan error
}

// NewServer builds the router over the engine published by holder.
func NewServer(holder *analysis.Holder, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = DefaultBatchConcurrency
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		holder:  holder,
		opts:    opts,
		cache:   opts.Cache,
		metrics: metrics.NewMetrics(opts.Registry),
		logger:  logging.GetLogger("api"),
		errCh:   make(chan error, 1),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(s.traceRequests)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/batch", s.handleBatch)
		r.Post("/breaking-changes", s.handleBreakingChanges)
	})

	if s.opts.MCPHandler != nil {
		endpoint := s.opts.MCPEndpoint
		if endpoint == "" {
			endpoint = "/mcp"
		}
		r.Handle(endpoint, s.opts.MCPHandler)
		s.logger.Info("MCP endpoint registered at %s", endpoint)
	}
	return r
}

func (s *Server) traceRequests(next http.Handler) http.Handler {
	if s.opts.Tracer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.opts.Tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.request_id", middleware.GetReqID(r.Context()))))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Handler returns the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Reload publishes an engine built over registry and drops cached results.
func (s *Server) Reload(registry *patterns.Registry) error {
	next, err := s.holder.Engine().WithRegistry(registry)
	if err != nil {
		s.metrics.RegistryReloads.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("failed to build engine: %w", err)
	}
	s.holder.Swap(next)
	if s.cache != nil {
		s.cache.Purge()
	}
	s.metrics.RegistryReloads.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info("Pattern registry reloaded")
	return nil
}

func (s *Server) Name() string { return "api" }

// Start listens on the configured port and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.opts.Port, err)
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorWithErr("API server error", err)
			s.errCh <- err
		}
	}()
	s.logger.Info("API server listening on %s", ln.Addr())
	return nil
}

// Stop drains in-flight requests within the deadline of ctx.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Err reports a fatal serve error after Start.
func (s *Server) Err() <-chan error {
	return s.errCh
}
