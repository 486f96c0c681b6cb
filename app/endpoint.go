// Package app assembles the engines, their HTTP endpoint and the persistence handle into nodes with
// a start and close lifecycle.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"

	"vdv736/service"
)

// DefaultShutdownGrace bounds how long in-flight requests may run after Close.
const DefaultShutdownGrace = 5 * time.Second

// Endpoint runs one echo server.
type Endpoint struct {
	echo   *echo.Echo
	addr   string
	grace  time.Duration
	logger log.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewEndpoint creates an Endpoint listening on addr. A non-positive grace falls back to
// DefaultShutdownGrace.
func NewEndpoint(addr string, grace time.Duration, logger log.Logger) *Endpoint {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	logger = log.WithPrefix(service.NilPanic(logger, "app.endpoint.go: logger is required"), "component", "Endpoint")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	service.RegisterErrorHandler(e, logger)

	return &Endpoint{
		echo:   e,
		addr:   addr,
		grace:  grace,
		logger: logger,
	}
}

// Echo exposes the router so handlers can be registered before Run.
func (ep *Endpoint) Echo() *echo.Echo {
	return ep.echo
}

// Listen binds the listening socket. It is called by Run when needed; calling it earlier makes
// the bound address known before serving starts, which matters for port 0.
func (ep *Endpoint) Listen() error {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if ep.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", ep.addr)
	if err != nil {
		return service.NewInternalServerError("can't listen on "+ep.addr, err)
	}
	ep.listener = l
	ep.echo.Listener = l
	return nil
}

// Addr is the bound address, nil before Listen.
func (ep *Endpoint) Addr() net.Addr {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if ep.listener == nil {
		return nil
	}
	return ep.listener.Addr()
}

// Run serves until ctx is cancelled, then shuts down within the grace period. It returns early with
// an error if the server fails.
func (ep *Endpoint) Run(ctx context.Context) error {
	if err := ep.Listen(); err != nil {
		return err
	}

	level.Info(ep.logger).Log("msg", "Starting HTTP server", "addr", ep.Addr())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ep.echo.Start(ep.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		level.Error(ep.logger).Log("msg", "HTTP server error", "err", err)
		return err
	case <-ctx.Done():
	}

	level.Info(ep.logger).Log("msg", "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ep.grace)
	defer cancel()
	if err := ep.echo.Shutdown(shutdownCtx); err != nil {
		level.Error(ep.logger).Log("msg", "Error during server shutdown", "err", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	level.Info(ep.logger).Log("msg", "Server stopped")
	return nil
}
