// Package server exposes the report pipeline over HTTP: spec uploads,
// run log queries, aggregate stats, and generated PDF downloads.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/config"
	"github.com/sells-group/autodoc/internal/pipeline"
	"github.com/sells-group/autodoc/internal/render"
	"github.com/sells-group/autodoc/internal/runlog"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the HTTP server lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        *zap.Logger
	cfg        config.ServerConfig
	store      runlog.Store
	opts       pipeline.Options
	uploadsDir string
	outputDir  string
	renderer   *render.Renderer
	httpServer *http.Server
	wg         sync.WaitGroup
	done       chan struct{}
}

// New creates an HTTP server around the given run log store. opts carries
// the default pipeline options; an upload can override strictness per
// request.
func New(cfg config.ServerConfig, store runlog.Store, opts pipeline.Options, uploadsDir, outputDir string) Server {
	return &server{
		log:        zap.L().With(zap.String("component", "server")),
		cfg:        cfg,
		store:      store,
		opts:       opts,
		uploadsDir: uploadsDir,
		outputDir:  outputDir,
		done:       make(chan struct{}),
	}
}

// Start migrates the store, prepares the working directories, and starts
// the HTTP listener. It returns once the listener is bound.
func (s *server) Start(ctx context.Context) error {
	if err := s.store.Migrate(ctx); err != nil {
		return eris.Wrap(err, "server: migrate store")
	}

	for _, dir := range []string{s.uploadsDir, s.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "server: create dir %s", dir)
		}
	}

	s.renderer = render.New(s.outputDir)

	addr := fmt.Sprintf(":%d", s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind the listener synchronously so we fail fast on port conflicts.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "server: listen on %s", addr)
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.log.Info("server: listening", zap.String("addr", ln.Addr().String()))

		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("server: serve failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server and waits for in-flight
// requests and background goroutines to finish.
func (s *server) Stop() error {
	close(s.done)

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Warn("server: shutdown error", zap.Error(err))
		}
	}

	s.wg.Wait()

	s.log.Info("server: stopped")

	return nil
}
