// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package celservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultShutdownTimeout bounds a graceful shutdown by default.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultRequestTimeout bounds reading a request and writing its response.
	DefaultRequestTimeout = 30 * time.Second
)

// Server manages the HTTP server lifecycle for a Handler.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	server          *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithShutdownTimeout bounds Shutdown before connections are forcibly closed.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithRequestTimeout sets the server's read and write timeouts.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.server.ReadTimeout = d
		s.server.WriteTimeout = d
	}
}

// WithServerLogger sets the logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer returns a server that will listen on addr ("host:port").
func NewServer(addr string, handler http.Handler, opts ...ServerOption) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	s := &Server{
		addr:            addr,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       DefaultRequestTimeout,
			WriteTimeout:      DefaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.server.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn)
	return s, nil
}

// Listen binds the listener. It is called by Start when needed; calling it
// first lets callers learn the bound address when addr uses port 0.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr(), nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Start serves requests until Shutdown is called or ctx is done, in which
// case it shuts down gracefully. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		if err := s.Shutdown(context.Background()); err != nil {
			s.logger.Error("shutdown after cancellation failed", "error", err)
		}
	})
	defer stop()

	s.logger.Info("CEL service listening", "addr", addr.String())
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests. If
// they do not finish within the shutdown timeout or ctx is done first, open
// connections are closed and an error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		closeErr := s.server.Close()
		return errors.Join(fmt.Errorf("graceful shutdown failed, forced close: %w", err), closeErr)
	}
	s.logger.Info("CEL service stopped")
	return nil
}
