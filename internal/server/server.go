// Package server exposes the live subsystem over HTTP: the WebSocket
// endpoint, the read-only reporting API, and health probes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jamcast/jamcast/internal/config"
	"github.com/jamcast/jamcast/internal/domain"
)

// liveHub is the subset of the hub the HTTP layer depends on.
type liveHub interface {
	Connect(transport domain.Transport) (string, error)
	Message(connID string, data []byte)
	Disconnect(connID string)
	Stats() (domain.Stats, error)
	Users() ([]domain.ConnectedUser, error)
	Activities() ([]domain.Activity, error)
	Sessions() ([]domain.JamSession, error)
	SessionByID(id string) (*domain.JamSession, error)
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	hub       liveHub
	clock     clockwork.Clock
	limits    *ConnectionLimits
	upgrader  websocket.Upgrader
	startTime time.Time
}

func NewServer(cfg *config.Config, hub liveHub, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:   e,
		config: cfg,
		hub:    hub,
		clock:  clock,
		limits: NewConnectionLimits(cfg.MaxConnections, cfg.MaxConnectionsPerIP, cfg.ConnectionRate, cfg.ConnectionBurst),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
