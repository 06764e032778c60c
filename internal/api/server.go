// Package api serves newscheck over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ppiankov/newscheck/internal/check"
	"github.com/ppiankov/newscheck/internal/logutil"
	"github.com/ppiankov/newscheck/internal/store"
)

const (
	maxBodyBytes    = 16 << 10
	shutdownTimeout = 10 * time.Second
	defaultLimit    = 20
	maxLimit        = 100
)

// Runner runs the check pipeline for one link.
type Runner interface {
	Run(ctx context.Context, raw string, opts check.Options) (check.Result, error)
}

// HistoryLister reads recorded checks.
type HistoryLister interface {
	ListChecks(ctx context.Context, since time.Time, filters ...store.CheckFilter) ([]store.Check, error)
}

// Options configure a Server. History may be nil when no store is configured.
type Options struct {
	Checker     Runner
	History     HistoryLister
	CORSOrigins []string
}

// Server routes API requests.
type Server struct {
	checker Runner
	history HistoryLister
	origins []string
	mux     *http.ServeMux
}

// New creates a server with all routes registered.
func New(opts Options) *Server {
	s := &Server{
		checker: opts.Checker,
		history: opts.History,
		origins: opts.CORSOrigins,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /formats", s.handleFormats)
	s.mux.HandleFunc("POST /check-url", s.handleCheckURL)
	s.mux.HandleFunc("GET /checks", s.handleChecks)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(s.mux, RequestID, Logging, CORS(s.origins))
}

// Run listens on addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logutil.Infof("listening on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logutil.Infof("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
