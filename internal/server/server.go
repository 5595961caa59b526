package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	// ErrStart indicates that the server failed to start
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)

// Server wraps http.Server with graceful shutdown on context cancellation,
// SIGINT and SIGTERM.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu        sync.Mutex
	srv       *http.Server
	bound     string
	ready     chan struct{}
	readyOnce sync.Once
}

// New returns a server listening on addr
func New(addr string, shutdownTimeout time.Duration, logger *slog.Logger) *Server {
	if addr == "" {
		addr = ":8000"
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
		ready:           make(chan struct{}),
	}
}

// Addr blocks until the first Run has either bound its listener or failed
// to, and returns the bound address. It is empty after a failed start.
func (s *Server) Addr() string {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// started records the outcome of listening and releases Addr callers.
// A failed listen frees the server for another Run.
func (s *Server) started(addr string, err error) {
	s.mu.Lock()
	s.bound = addr
	if err != nil {
		s.srv = nil
	}
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

// Run serves handler and blocks until shutdown
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.srv = srv
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.started("", err)
		return errors.Join(ErrStart, err)
	}
	s.started(ln.Addr().String(), nil)
	s.logger.Info("server listening", "addr", ln.Addr().String())
	defer func() {
		s.mu.Lock()
		s.srv = nil
		s.mu.Unlock()
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-ctx.Done():
		runErr = s.shutdown(srv, errCh)
	case sig := <-stop:
		s.logger.Info("received signal", "signal", sig.String())
		runErr = s.shutdown(srv, errCh)
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return runErr
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) shutdown(srv *http.Server, errCh <-chan error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return errors.Join(ErrShutdown, err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrStart, err)
	}
	return nil
}
