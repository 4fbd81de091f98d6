// Package live implements the real-time collaborative listening subsystem:
// the connection registry, jam sessions, activity feed, message router,
// broadcast fan-out, and liveness supervisor.
//
// All mutable state is owned by a single hub goroutine that consumes a
// command channel plus the heartbeat and cleanup tickers in one select loop,
// so handlers and sweeps never run concurrently and no locking is needed.
package live

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jamcast/jamcast/internal/domain"
	"github.com/jamcast/jamcast/internal/metrics"
)

const (
	commandBuffer  = 256
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// Options configures the hub's timers and caps.
type Options struct {
	HeartbeatInterval   time.Duration
	CleanupInterval     time.Duration
	ClientTimeout       time.Duration
	MaxActivities       int
	MaxRecentActivities int
}

// hubCmd is the command interface for the hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type connectCmd struct {
	baseHubCmd
	transport    domain.Transport
	replyChannel chan string
}

type messageCmd struct {
	baseHubCmd
	connID string
	data   []byte
}

type closeCmd struct {
	baseHubCmd
	connID string
}

type statsCmd struct {
	baseHubCmd
	replyChannel chan domain.Stats
}

type usersCmd struct {
	baseHubCmd
	replyChannel chan []domain.ConnectedUser
}

type activitiesCmd struct {
	baseHubCmd
	replyChannel chan []domain.Activity
}

type sessionsCmd struct {
	baseHubCmd
	replyChannel chan []domain.JamSession
}

type sessionByIDCmd struct {
	baseHubCmd
	id           string
	replyChannel chan *domain.JamSession
}

type stopCmd struct {
	baseHubCmd
}

// Hub is the live subsystem actor. Construct with NewHub; interact through
// the public methods, which post commands to the hub goroutine.
type Hub struct {
	cmdCh     chan hubCmd
	clock     clockwork.Clock
	opts      Options
	conns     *registry
	sessions  *sessionStore
	feed      *activityFeed
	startedAt time.Time
	done      chan struct{}
}

// NewHub creates the hub and starts its goroutine.
func NewHub(opts Options, clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:     make(chan hubCmd, commandBuffer),
		clock:     clock,
		opts:      opts,
		conns:     newRegistry(clock),
		sessions:  newSessionStore(),
		feed:      newActivityFeed(clock, opts.MaxActivities, opts.MaxRecentActivities),
		startedAt: clock.Now(),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Connect registers a transport and returns the assigned connection id.
func (h *Hub) Connect(transport domain.Transport) (string, error) {
	replyCh := make(chan string, 1)
	h.cmdCh <- connectCmd{transport: transport, replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case id := <-replyCh:
		return id, nil
	case <-timer.Chan():
		return "", fmt.Errorf("connect command timed out after %v", commandTimeout)
	}
}

// Message hands one raw inbound frame to the hub. Fire-and-forget: any
// response or broadcast is delivered through the transports.
func (h *Hub) Message(connID string, data []byte) {
	h.cmdCh <- messageCmd{connID: connID, data: data}
}

// Disconnect runs the disconnect cascade for a closed transport.
func (h *Hub) Disconnect(connID string) {
	h.cmdCh <- closeCmd{connID: connID}
}

// Stats returns the aggregate subsystem view.
func (h *Hub) Stats() (domain.Stats, error) {
	replyCh := make(chan domain.Stats, 1)
	h.cmdCh <- statsCmd{replyChannel: replyCh}
	return await(h.clock, replyCh, "stats")
}

// Users returns snapshots of all identified connections.
func (h *Hub) Users() ([]domain.ConnectedUser, error) {
	replyCh := make(chan []domain.ConnectedUser, 1)
	h.cmdCh <- usersCmd{replyChannel: replyCh}
	return await(h.clock, replyCh, "users")
}

// Activities returns the recency-filtered activity feed.
func (h *Hub) Activities() ([]domain.Activity, error) {
	replyCh := make(chan []domain.Activity, 1)
	h.cmdCh <- activitiesCmd{replyChannel: replyCh}
	return await(h.clock, replyCh, "activities")
}

// Sessions returns snapshots of all live jam sessions.
func (h *Hub) Sessions() ([]domain.JamSession, error) {
	replyCh := make(chan []domain.JamSession, 1)
	h.cmdCh <- sessionsCmd{replyChannel: replyCh}
	return await(h.clock, replyCh, "sessions")
}

// SessionByID returns one session snapshot, or nil when absent.
func (h *Hub) SessionByID(id string) (*domain.JamSession, error) {
	replyCh := make(chan *domain.JamSession, 1)
	h.cmdCh <- sessionByIDCmd{id: id, replyChannel: replyCh}
	return await(h.clock, replyCh, "session")
}

func await[T any](clock clockwork.Clock, replyCh chan T, op string) (T, error) {
	timer := clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case v := <-replyCh:
		return v, nil
	case <-timer.Chan():
		var zero T
		return zero, fmt.Errorf("%s query timed out after %v", op, commandTimeout)
	}
}

// Stop shuts the hub down, closing every transport. Blocks until the hub
// goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Live hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Live hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	heartbeat := h.clock.NewTicker(h.opts.HeartbeatInterval)
	defer heartbeat.Stop()

	cleanup := h.clock.NewTicker(h.opts.CleanupInterval)
	defer cleanup.Stop()

	defer close(h.done)

	for {
		metrics.HubCommandChannelDepth.Set(float64(len(h.cmdCh)))

		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case connectCmd:
				h.handleConnect(c)
			case messageCmd:
				h.handleMessage(c)
			case closeCmd:
				h.handleClose(c)
			case statsCmd:
				c.replyChannel <- h.buildStats()
			case usersCmd:
				c.replyChannel <- h.conns.users()
			case activitiesCmd:
				c.replyChannel <- h.feed.recent()
			case sessionsCmd:
				c.replyChannel <- h.sessions.all()
			case sessionByIDCmd:
				c.replyChannel <- h.sessionSnapshot(c.id)
			case stopCmd:
				h.handleStop()
				return
			default:
				slog.Warn("Live hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		case <-heartbeat.Chan():
			h.handleHeartbeatTick()
		case <-cleanup.Chan():
			h.handleCleanupTick()
		}
	}
}

func (h *Hub) handleConnect(c connectCmd) {
	conn := h.conns.register(c.transport)
	metrics.ConnectedClients.Set(float64(h.conns.size()))
	slog.Debug("Connection registered", "client_id", conn.id, "total_connections", h.conns.size())

	h.sendTo(conn, domain.NewWelcome(conn.id, h.now()))
	c.replyChannel <- conn.id
}

func (h *Hub) handleClose(c closeCmd) {
	conn := h.conns.get(c.connID)
	if conn == nil {
		return
	}
	h.dropConnection(conn, "Connection closed")
}

func (h *Hub) buildStats() domain.Stats {
	return domain.Stats{
		ConnectedClients: h.conns.size(),
		TotalActivities:  h.feed.total(),
		RecentActivities: len(h.feed.recent()),
		ActiveUsers:      h.conns.users(),
		JamSessions:      h.sessions.size(),
		Uptime:           h.clock.Since(h.startedAt).Seconds(),
	}
}

func (h *Hub) sessionSnapshot(id string) *domain.JamSession {
	sess := h.sessions.get(id)
	if sess == nil {
		return nil
	}
	snap := sess.snapshot()
	return &snap
}

// handleHeartbeatTick broadcasts a heartbeat frame to every connection.
func (h *Hub) handleHeartbeatTick() {
	h.broadcastAll(domain.NewHeartbeat(h.now()), "")
}

// handleCleanupTick evicts connections whose liveness timestamp is older
// than the client timeout, via the same path as an explicit disconnect.
func (h *Hub) handleCleanupTick() {
	now := h.clock.Now()
	for _, conn := range h.conns.all() {
		if now.Sub(conn.lastActivity) <= h.opts.ClientTimeout {
			continue
		}
		slog.Info("Evicting inactive connection",
			"client_id", conn.id,
			"username", conn.username,
			"idle", now.Sub(conn.lastActivity),
		)
		metrics.ConnectionsEvictedTotal.WithLabelValues("timeout").Inc()
		h.dropConnection(conn, "Disconnected due to inactivity")
	}
}

func (h *Hub) handleStop() {
	slog.Info("Live hub shutting down", "connections", h.conns.size(), "jam_sessions", h.sessions.size())
	for _, conn := range h.conns.all() {
		h.conns.remove(conn.id)
		conn.transport.Close("Server shutting down")
	}
	metrics.ConnectedClients.Set(0)
	metrics.IdentifiedUsers.Set(0)
}

// dropConnection removes a connection, cascades its session membership, and
// closes the transport. Used by explicit disconnect, duplicate-login
// eviction, and the liveness sweep.
func (h *Hub) dropConnection(conn *connection, closeReason string) {
	h.cascadeLeave(conn)

	h.conns.remove(conn.id)
	metrics.ConnectedClients.Set(float64(h.conns.size()))

	if conn.identified() {
		slog.Info("User disconnected", "client_id", conn.id, "username", conn.username)
		metrics.IdentifiedUsers.Set(float64(len(h.conns.users())))
		h.broadcastAll(domain.NewUserLeft(conn.username, h.conns.users(), h.now()), conn.id)
	}

	conn.transport.Close(closeReason)
}

// cascadeLeave detaches a connection from its session, terminating the
// session when the connection is the host.
func (h *Hub) cascadeLeave(conn *connection) {
	if conn.joinedSessionID == "" {
		return
	}
	sess := h.sessions.get(conn.joinedSessionID)
	if sess == nil {
		conn.clearMembership()
		return
	}

	if sess.hostID == conn.id {
		h.terminateSession(sess, conn)
		return
	}

	sess.removeParticipant(conn.id)
	conn.clearMembership()
	h.broadcastSession(sess, domain.NewJamUpdated(sess.snapshot(), h.now()), conn.id)
}

// terminateSession deletes a session, clears every participant's membership,
// and notifies them. The host leaving ends the session unconditionally.
func (h *Hub) terminateSession(sess *jamSession, host *connection) {
	notice := domain.NewJamLeft("Host has ended the session", h.now())
	for _, pid := range sess.participants {
		if pid == host.id {
			continue
		}
		p := h.conns.get(pid)
		if p == nil {
			continue
		}
		p.clearMembership()
		h.sendTo(p, notice)
	}
	host.clearMembership()

	h.sessions.delete(sess.id)
	metrics.ActiveJamSessions.Set(float64(h.sessions.size()))
	slog.Info("Jam session terminated", "session_id", sess.id, "name", sess.name)

	h.broadcastAll(domain.NewJamListUpdated(h.sessions.all(), h.now()), host.id)
}

func (h *Hub) now() int64 {
	return h.clock.Now().UnixMilli()
}
