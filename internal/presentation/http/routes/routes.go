package routes

import (
	"github.com/acecasino/payout_automation/internal/container"
	"github.com/acecasino/payout_automation/internal/presentation/http/handlers"
	"github.com/labstack/echo"
)

// SetupRoutes sets up all routes for the application
func SetupRoutes(e *echo.Echo, c *container.Container) {
	automation := handlers.NewAutomationHandler(c)

	// API routes
	api := e.Group("/api/v1")

	// Health check
	e.GET("/health", handlers.HeartBeat)

	// Payout admission
	api.POST("/payouts", automation.CreatePayout)

	// Processing control
	api.POST("/processing/halt", automation.HaltProcessing)
	api.POST("/processing/resume", automation.ResumeProcessing)
	api.GET("/queues", automation.QueueStatus)

	// Risk scoring
	api.POST("/merchants/:id/risk-score/refresh", automation.RefreshRiskScore)

	// Observability
	api.GET("/metrics", automation.Metrics)
	api.GET("/audit", automation.AuditTrail)
}
