package http

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acecasino/payout_automation/internal/container"
	"github.com/acecasino/payout_automation/internal/presentation/http/middleware"
	"github.com/acecasino/payout_automation/internal/presentation/http/routes"
	"github.com/acecasino/payout_automation/pkg/logger"
	"github.com/labstack/echo"
)

// Server represents the HTTP server
type Server struct {
	container *container.Container
	server    *echo.Echo
}

// NewServer creates a new HTTP server
func NewServer(c *container.Container) *Server {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	return &Server{
		container: c,
		server:    e,
	}
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	routes.SetupRoutes(s.server, s.container)

	port := s.container.Config.Server.Port
	if port == "" {
		port = "8080"
	}

	logger.GetLogger().Infof("Starting server on port %s", port)

	// Graceful shutdown
	go func() {
		if err := s.server.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("Shutting down server...")

	if s.container.Scheduler.IsRunning() {
		s.container.Scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.GetLogger().Fatalf("Server forced to shutdown: %v", err)
	}

	logger.GetLogger().Info("Server exited")
	return nil
}
