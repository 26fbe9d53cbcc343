// Package server exposes story generation and narration over HTTP and owns
// the process lifecycle of the listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/narratron/narratron/internal/storage"
	"github.com/narratron/narratron/internal/story"
)

// Generator produces a story for a prompt and duration preset.
type Generator interface {
	Generate(ctx context.Context, prompt, duration string) (story.Result, error)
}

// Narrator renders text to audio and returns the stored artifact name.
type Narrator interface {
	Narrate(ctx context.Context, text string) (string, error)
}

// Server hosts the narration HTTP API.
type Server struct {
	generator       Generator
	narrator        Narrator
	store           storage.Store
	health          func(ctx context.Context) map[string]bool
	defaultDuration string
	logger          *slog.Logger

	httpServer *http.Server
}

// Options carries the listener settings the server does not derive itself.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DefaultDuration string
}

// New wires the HTTP API. health reports per-strategy availability for the
// health endpoint; it may be nil.
func New(opts Options, gen Generator, narr Narrator, store storage.Store, health func(ctx context.Context) map[string]bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultDuration == "" {
		opts.DefaultDuration = "corto"
	}

	s := &Server{
		generator:       gen,
		narrator:        narr,
		store:           store,
		health:          health,
		defaultDuration: opts.DefaultDuration,
		logger:          logger.With("component", "server"),
	}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// routes builds the request mux. Exposed for handler tests.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/generar", s.handleGenerate)
	mux.HandleFunc("/narrar", s.handleNarrate)
	mux.HandleFunc("/static/audio/", s.handleAudio)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves until the context is canceled, then drains in-flight requests
// within the shutdown timeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
