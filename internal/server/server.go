// Package server exposes the layout pipeline and hosted galleries over
// HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /metrics                     (when a gatherer is configured)
//	POST   /v1/layout                   compute a layout
//	POST   /v1/render/{format}          compute and render (svg, png, json, txt)
//	GET    /v1/galleries                list hosted gallery ids
//	POST   /v1/galleries                create and initialize a gallery
//	GET    /v1/galleries/{id}           current options and layout
//	PATCH  /v1/galleries/{id}           update tiles/box/width and reinitialize
//	POST   /v1/galleries/{id}/resize    debounced relayout at a new width
//	DELETE /v1/galleries/{id}           close a gallery
//
// Errors are JSON objects {"code": ..., "message": ...} with the status
// derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/masonry/pkg/config"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// Server holds the router, the pipeline runner and the hosted galleries.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.Server
	logger   *log.Logger
	gatherer prometheus.Gatherer
	baseCtx  context.Context
	delays   [2]time.Duration
	defaults gallery.Options

	registry *gallery.MemoryRegistry
	mu       sync.Mutex
	hosted   map[int]*hostedGallery

	router chi.Router
}

// hostedGallery is a gallery together with the in-memory host it measures
// and renders into.
type hostedGallery struct {
	g    *gallery.Gallery
	host *gallery.Static
	out  *gallery.Recorder
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the listen address, CORS origins and body limit.
func WithConfig(c config.Server) Option { return func(s *Server) { s.cfg = c } }

// WithLogger sets the request and gallery logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// WithBaseContext sets the context hosted galleries run under. Debounced
// passes stop once it is done. Defaults to context.Background.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// WithGalleryDelays overrides the animation and resize delays of hosted
// galleries.
func WithGalleryDelays(animation, resize time.Duration) Option {
	return func(s *Server) { s.delays = [2]time.Duration{animation, resize} }
}

// WithGalleryDefaults sets the options new galleries start from before
// request overrides are merged in.
func WithGalleryDefaults(o gallery.Options) Option { return func(s *Server) { s.defaults = o } }

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		cfg:      config.Default().Server,
		logger:   log.New(io.Discard),
		baseCtx:  context.Background(),
		defaults: gallery.DefaultOptions(),
		registry: gallery.NewMemoryRegistry(),
		hosted:   make(map[int]*hostedGallery),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxBodyBytes <= 0 {
		s.cfg.MaxBodyBytes = config.Default().Server.MaxBodyBytes
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Cache"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		// group middlewares run after routing, so the route pattern is known
		r.Group(func(r chi.Router) {
			r.Use(s.instrument)

			r.Post("/layout", s.handleLayout)
			r.Post("/render/{format}", s.handleRender)

			r.Get("/galleries", s.handleListGalleries)
			r.Post("/galleries", s.handleCreateGallery)
			r.Get("/galleries/{id}", s.handleGetGallery)
			r.Patch("/galleries/{id}", s.handleUpdateGallery)
			r.Post("/galleries/{id}/resize", s.handleResizeGallery)
			r.Delete("/galleries/{id}", s.handleDeleteGallery)
		})
	})
	return r
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully and closes every hosted gallery.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.CloseGalleries()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.CloseGalleries()
	if err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// CloseGalleries closes every hosted gallery.
func (s *Server) CloseGalleries() {
	s.mu.Lock()
	hosted := s.hosted
	s.hosted = make(map[int]*hostedGallery)
	s.mu.Unlock()

	for id, h := range hosted {
		_ = h.g.Close()
		observability.Gallery().OnGalleryClose(s.baseCtx, id)
	}
}
