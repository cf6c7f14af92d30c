package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/go-error-boundaries/internal/boundary"
	"github.com/mkarlsen/go-error-boundaries/internal/config"
	"github.com/mkarlsen/go-error-boundaries/internal/http/middleware"
)

// Options tunes transport behavior that only tests usually care about.
type Options struct {
	// TracebackOut receives the supervisor's unstructured traceback dumps.
	// Nil means stderr, matching a hosting process's conventional sink.
	TracebackOut io.Writer
}

// Server is the HTTP entry point: the Gin engine for the configured variant,
// wrapped in the transport layer (access logging plus the supervisory
// boundary) and backed by an http.Server with the configured timeouts.
type Server struct {
	cfg    config.Config
	engine *gin.Engine
	sup    *boundary.Supervisor
	srv    *http.Server
}

// NewServer builds a server for cfg.Variant with default options.
func NewServer(cfg config.Config) *Server {
	return NewServerWithOptions(cfg, Options{})
}

// NewServerWithOptions builds a server with explicit transport options.
func NewServerWithOptions(cfg config.Config, opts Options) *Server {
	table := NewTable(cfg)

	engine := gin.New()
	RegisterRoutes(engine, table, cfg)

	s := &Server{
		cfg:    cfg,
		engine: engine,
		sup:    boundary.NewSupervisor(table, opts.TracebackOut),
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return s
}

// ServeHTTP runs the transport choreography for one request:
//
//  1. Guard the engine behind the supervisory boundary, so the client always
//     receives exactly one response even when a condition escapes.
//  2. Emit the access line once the response is observable.
//  3. Re-signal any escaped condition as a raw traceback dump.
//
// Step 3 after step 2 is the layering the demo documents: the supervisor's
// duplicate record trails the access line, exactly where an operator sees it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w}

	esc := s.sup.Guard(sw, r, s.engine)

	log.Info().
		Str("request_id", sw.Header().Get(middleware.HeaderRequestID)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("proto", r.Proto).
		Int("status", sw.Status()).
		Int("bytes_out", sw.bytes).
		Dur("latency", time.Since(start)).
		Msg("request")

	if esc != nil {
		s.sup.Resignal(r, esc)
	}
}

// Run starts the listener and blocks until ctx is cancelled or the listener
// fails. On cancellation it drains connections within the configured
// shutdown grace period before giving up.
func (s *Server) Run(ctx context.Context) error {
	log.Info().
		Str("addr", s.srv.Addr).
		Str("variant", string(s.cfg.Variant)).
		Msg("listening")

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			_ = s.srv.Close()
		}

		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// statusWriter records the status code and byte count the pipeline writes,
// so the access line can report what the client actually observed.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Status returns the written status, or 200 when the pipeline completed
// without writing a header (net/http's implicit default).
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
