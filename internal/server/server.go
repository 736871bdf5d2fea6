package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/okvist/printlink/internal/logging"
)

// Config holds the simulator configuration
type Config struct {
	Host     string
	Port     int
	Hostname string // Hostname reported by /api/version
	API      string // API version reported by /api/version
	Server   string // Server version reported by /api/version

	// Credentials. Setting APIKey selects API key auth, setting User and
	// Password selects digest auth. With neither, the simulator answers
	// unauthenticated requests.
	APIKey   string
	User     string
	Password string

	LogLevel string
}

// Server is a simulated PrusaLink printer
type Server struct {
	config *Config
	http   *http.Server
	events *eventHub
	nonces *nonceCache
}

// New creates a new simulator instance
func New(config *Config) *Server {
	if config.Hostname == "" {
		config.Hostname = "PrusaMINI"
	}
	if config.API == "" {
		config.API = "2.0.0"
	}
	if config.Server == "" {
		config.Server = "2.1.2"
	}

	s := &Server{
		config: config,
		events: newEventHub(),
		nonces: newNonceCache(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/version", s.requireAuth(s.handleVersion))
	mux.HandleFunc("GET /api/events", s.requireAuth(s.handleEvents))

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: mux,
	}

	return s
}

// Start starts the simulator and blocks until shutdown
func (s *Server) Start() error {
	if err := logging.Initialize(s.config.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logging.Info("Starting printer simulator",
		zap.String("addr", s.http.Addr),
		zap.String("hostname", s.config.Hostname),
		zap.String("api", s.config.API),
		zap.String("auth", s.authMode()),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	// Push fake job status updates to connected event streams
	go s.events.run()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the simulator
func (s *Server) Shutdown(ctx context.Context) error {
	s.events.close()

	if err := s.http.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
		return err
	}

	logging.Info("Simulator stopped")
	logging.Sync()
	return nil
}

// authMode names the configured authentication scheme for logging
func (s *Server) authMode() string {
	switch {
	case s.config.APIKey != "":
		return "api-key"
	case s.config.User != "":
		return "digest"
	default:
		return "none"
	}
}
