// Package server provides HTTP server initialization and management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fundroad/fundroad-go/internal/application/container"
	"github.com/fundroad/fundroad-go/internal/presentation/http/routes"
	"github.com/fundroad/fundroad-go/pkg/config"
)

const maxHeaderBytes = 1 << 20

// Config holds the listener address and connection timeouts.
type Config struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ConfigFromEnv reads the server settings loaded by pkg/config.
func ConfigFromEnv() Config {
	return Config{
		Host:         config.Host,
		Port:         config.Port,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}
}

// Server wraps the HTTP server with configuration and dependency injection
type Server struct {
	httpServer *http.Server
	container  *container.Container
	listener   net.Listener
}

// New creates a new HTTP server instance with dependency injection.
// Port "0" binds an ephemeral port; Addr reports it after Listen.
func New(cfg Config, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:           net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: maxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(container.Logger.System().Handler(), slog.LevelWarn),
	}

	return &Server{
		httpServer: httpServer,
		container:  container,
	}
}

// Listen binds the configured address without serving yet.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener
	return nil
}

// Addr is the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Serve handles requests on the bound listener until Stop.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	s.container.Logger.System().Info("Starting HTTP server", "address", s.Addr())

	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Start binds and serves; it blocks until Stop.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Stop gracefully shuts down the HTTP server. Hijacked websocket connections
// are not waited for.
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
