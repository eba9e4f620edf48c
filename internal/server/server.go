// Package server exposes collections, graphs and the text export over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"eventdocs/internal/generator"
	"eventdocs/internal/graph"
	"eventdocs/internal/observability"
	"eventdocs/internal/pipeline"
	"eventdocs/internal/storage"
)

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithMetrics(m *observability.Collector) Option {
	return func(s *Server) { s.metrics = m }
}

// WithGraphStore enables GET /api/saved-graphs/{graphID}.
func WithGraphStore(g storage.GraphStore) Option {
	return func(s *Server) { s.graphs = g }
}

func WithExport(opts generator.LLMSOptions) Option {
	return func(s *Server) { s.export = opts }
}

type Server struct {
	pipeline *pipeline.Pipeline
	builder  *graph.Builder
	graphs   storage.GraphStore
	export   generator.LLMSOptions
	mermaid  *generator.MermaidGenerator
	logger   *zap.Logger
	metrics  *observability.Collector
}

func New(p *pipeline.Pipeline, b *graph.Builder, opts ...Option) *Server {
	s := &Server{
		pipeline: p,
		builder:  b,
		mermaid:  &generator.MermaidGenerator{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler configures all routes and middleware.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))
	router.Use(requestMetrics(s.metrics))

	router.Get("/healthz", s.health)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler())
	}
	router.Get("/llms.txt", s.llmsText)

	router.Route("/api", func(r chi.Router) {
		r.Get("/collections/{collection}", s.listCollection)
		r.Get("/diagnostics", s.diagnostics)
		r.Route("/graphs/{kind}/{id}", func(r chi.Router) {
			r.Get("/", s.getGraph)
			r.Get("/mermaid", s.getMermaid)
		})
		if s.graphs != nil {
			r.Get("/saved-graphs/{graphID}", s.getSavedGraph)
		}
	})

	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
