package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	readHeaderTimeoutConstant    = 10 * time.Second
	idleTimeoutConstant          = 2 * time.Minute
	shutdownTimeoutConstant      = 5 * time.Second
	serverStartedLogMessage      = "HTTP server listening"
	serverStoppedLogMessage      = "HTTP server stopped"
	logFieldListenAddressConst   = "address"
	serverNotConfiguredMessage   = "server handler not configured"
	listenerNotConfiguredMessage = "server listener not configured"
)

var (
	// ErrHandlerNotConfigured indicates the server was constructed without a handler.
	ErrHandlerNotConfigured = errors.New(serverNotConfiguredMessage)
	// ErrListenerNotConfigured indicates Serve was called without a listener.
	ErrListenerNotConfigured = errors.New(listenerNotConfiguredMessage)
)

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
	hub        *EventHub
}

// NewServer wraps handler in an http.Server. The hub, when present, is closed on shutdown.
func NewServer(handler http.Handler, hub *EventHub, logger *zap.Logger) (*Server, error) {
	if handler == nil {
		return nil, ErrHandlerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger: logger,
		hub:    hub,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeoutConstant,
			IdleTimeout:       idleTimeoutConstant,
		},
	}, nil
}

// Serve accepts connections on listener until executionContext is done, then shuts down gracefully.
func (server *Server) Serve(executionContext context.Context, listener net.Listener) error {
	if listener == nil {
		return ErrListenerNotConfigured
	}
	server.logger.Info(serverStartedLogMessage, zap.String(logFieldListenAddressConst, listener.Addr().String()))

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- server.httpServer.Serve(listener)
	}()

	select {
	case serveError := <-serveErrors:
		server.closeHub()
		if errors.Is(serveError, http.ErrServerClosed) {
			return nil
		}
		return serveError
	case <-executionContext.Done():
	}

	shutdownContext, cancel := context.WithTimeout(context.Background(), shutdownTimeoutConstant)
	defer cancel()
	server.closeHub()
	shutdownError := server.httpServer.Shutdown(shutdownContext)
	<-serveErrors
	server.logger.Info(serverStoppedLogMessage)
	return shutdownError
}

func (server *Server) closeHub() {
	if server.hub != nil {
		server.hub.Close()
	}
}
