package live

import (
	"encoding/json"
	"log/slog"

	"github.com/jamcast/jamcast/internal/domain"
	"github.com/jamcast/jamcast/internal/metrics"
)

// Delivery is best-effort per connection: a failing transport is skipped and
// never aborts delivery to the remaining targets.

// sendTo delivers one frame to a single connection.
func (h *Hub) sendTo(conn *connection, msg domain.Outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal outbound message", "type", msg.Type, "error", err)
		return
	}
	h.deliver(conn, msg.Type, data)
}

// broadcastAll delivers one frame to every registered connection, optionally
// excluding a single connection id.
func (h *Hub) broadcastAll(msg domain.Outbound, except string) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "type", msg.Type, "error", err)
		return
	}
	for _, conn := range h.conns.all() {
		if conn.id == except {
			continue
		}
		h.deliver(conn, msg.Type, data)
	}
}

// broadcastSession delivers one frame to every participant of a session,
// resolved fresh against the registry at delivery time, optionally excluding
// the actor.
func (h *Hub) broadcastSession(sess *jamSession, msg domain.Outbound, except string) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "type", msg.Type, "error", err)
		return
	}
	for _, pid := range sess.participants {
		if pid == except {
			continue
		}
		conn := h.conns.get(pid)
		if conn == nil {
			continue
		}
		h.deliver(conn, msg.Type, data)
	}
}

func (h *Hub) deliver(conn *connection, kind string, data []byte) {
	if err := conn.transport.Send(data); err != nil {
		metrics.BroadcastSendFailures.Inc()
		slog.Debug("Dropped outbound message", "client_id", conn.id, "type", kind, "error", err)
		return
	}
	metrics.MessagesSentTotal.WithLabelValues(kind).Inc()
}
