package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jamcast/jamcast/internal/metrics"
)

func (s *Server) handleWebSocket(c echo.Context) error {
	ip := c.RealIP()

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.ConnectionsRejectedTotal.WithLabelValues(string(reason)).Inc()
		slog.Warn("Rejected connection attempt", "ip", ip, "reason", reason)
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "too many connections",
		})
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.limits.Release(ip)
		slog.Warn("WebSocket upgrade failed", "ip", ip, "error", err)
		return nil
	}

	transport := newWSTransport(conn, s.clock)

	clientID, err := s.hub.Connect(transport)
	if err != nil {
		transport.Close("Server unavailable")
		s.limits.Release(ip)
		slog.Error("Failed to register connection", "ip", ip, "error", err)
		return nil
	}

	slog.Debug("Client connected", "client_id", clientID, "ip", ip)

	// Read pump. Every inbound frame is handed to the hub; the loop ends when
	// the peer disconnects or the hub closes the transport underneath us.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.hub.Message(clientID, data)
	}

	s.hub.Disconnect(clientID)
	s.limits.Release(ip)
	slog.Debug("Client disconnected", "client_id", clientID, "ip", ip)

	return nil
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.hub.Stats()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "live hub unavailable"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleActivities(c echo.Context) error {
	activities, err := s.hub.Activities()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "live hub unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

func (s *Server) handleUsers(c echo.Context) error {
	users, err := s.hub.Users()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "live hub unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

func (s *Server) handleJamSessions(c echo.Context) error {
	sessions, err := s.hub.Sessions()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "live hub unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"jamSessions": sessions,
		"count":       len(sessions),
	})
}

func (s *Server) handleJamSessionByID(c echo.Context) error {
	session, err := s.hub.SessionByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "live hub unavailable"})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "jam session not found"})
	}
	return c.JSON(http.StatusOK, session)
}
