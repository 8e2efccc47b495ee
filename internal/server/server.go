// Package server exposes the floorcad pipeline over HTTP.
//
// Routes:
//
//	POST /api/drawings                  compile a floor plan and store its artifacts
//	GET  /api/drawings/{id}             list the formats stored for a drawing
//	GET  /api/drawings/{id}/download    download one artifact (?format=dxf)
//	GET  /healthz                       liveness probe
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/pipeline"
)

// DefaultFormats are stored for every drawing when Config.Options names none.
var DefaultFormats = []string{pipeline.FormatDXF, pipeline.FormatJSON}

// MaxBodyBytes bounds the size of an uploaded floor plan.
const MaxBodyBytes = 10 << 20

const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr           string
	AllowedOrigins []string

	// Options are the pipeline options of every compile request. Formats
	// defaults to dxf and json.
	Options pipeline.Options
}

// Server serves the compile and download endpoints.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	opts    pipeline.Options
	origins []string
	addr    string
	router  chi.Router
}

// New returns a server backed by runner. The runner must have a store,
// since every compiled drawing is downloadable by id.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) (*Server, error) {
	if runner == nil || runner.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server requires a runner with an artifact store")
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	opts := cfg.Options
	if len(opts.Formats) == 0 {
		opts.Formats = slices.Clone(DefaultFormats)
	}
	if !slices.Contains(opts.Formats, pipeline.FormatDXF) {
		opts.Formats = append([]string{pipeline.FormatDXF}, opts.Formats...)
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	opts.Logger = logger

	s := &Server{
		runner:  runner,
		logger:  logger,
		opts:    opts,
		origins: cfg.AllowedOrigins,
		addr:    cfg.Addr,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(corsHandler(s.origins))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/drawings", func(r chi.Router) {
		r.Post("/", s.handleCompile)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/download", s.handleDownload)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no route for "+r.URL.Path)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
