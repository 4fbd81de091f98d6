package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// WebSocket endpoint
	s.echo.GET("/ws/live-music", s.handleWebSocket)

	// Read-only reporting API
	api := s.echo.Group("/api/live")
	api.GET("/stats", s.handleStats)
	api.GET("/activities", s.handleActivities)
	api.GET("/users", s.handleUsers)
	api.GET("/jam-sessions", s.handleJamSessions)
	api.GET("/jam-sessions/:id", s.handleJamSessionByID)
	api.GET("/health", s.handleLiveHealth)
}
