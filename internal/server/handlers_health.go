package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": time.Since(s.startTime).String(),
	})
}

// handleReadiness proves the hub command loop is responsive by running a
// stats query through it.
func (s *Server) handleReadiness(c echo.Context) error {
	if _, err := s.hub.Stats(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLiveHealth(c echo.Context) error {
	stats, err := s.hub.Stats()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"service": "live-music",
			"status":  "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"service":          "live-music",
		"status":           "ok",
		"connectedClients": stats.ConnectedClients,
		"jamSessions":      stats.JamSessions,
	})
}
