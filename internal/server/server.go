// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server wraps the echo instance with lifecycle management.
type Server struct {
	echo   *echo.Echo
	port   string
	logger *slog.Logger
}

// New creates the HTTP server and registers all routes.
func New(handler *Handler, port string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger(logger))

	e.GET("/health", handler.Health)

	api := e.Group("/api/v1")
	api.POST("/chat", handler.Chat)
	api.GET("/conversations", handler.ListConversations)
	api.GET("/conversations/:id/messages", handler.ConversationMessages)
	api.GET("/stats", handler.Stats)

	return &Server{echo: e, port: port, logger: logger}
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%s", s.port)
		s.logger.Info("starting HTTP server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		return s.echo.Shutdown(context.Background())
	}
}
