package live

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jamcast/jamcast/internal/domain"
)

// connection is one registered transport plus its identity and liveness
// bookkeeping. The transport handle lives here and nowhere else; every other
// structure refers to a connection by id only.
type connection struct {
	id              string
	transport       domain.Transport
	username        string // empty until the client identifies
	connectedAt     time.Time
	lastActivity    time.Time
	joinedSessionID string
	isHost          bool
}

func (c *connection) identified() bool {
	return c.username != ""
}

func (c *connection) clearMembership() {
	c.joinedSessionID = ""
	c.isHost = false
}

func (c *connection) snapshot() domain.ConnectedUser {
	return domain.ConnectedUser{
		ID:                 c.id,
		Username:           c.username,
		LastActivity:       c.lastActivity.UnixMilli(),
		ConnectedAt:        c.connectedAt.UnixMilli(),
		IsJamSessionHost:   c.isHost,
		JoinedJamSessionID: c.joinedSessionID,
	}
}

// registry owns the connection-id keyed store. It is only ever touched from
// the hub goroutine, so it needs no locking.
type registry struct {
	clock clockwork.Clock
	conns map[string]*connection
	order []string // insertion order, for stable listings
}

func newRegistry(clock clockwork.Clock) *registry {
	return &registry{
		clock: clock,
		conns: make(map[string]*connection),
	}
}

func (r *registry) register(transport domain.Transport) *connection {
	now := r.clock.Now()
	conn := &connection{
		id:           uuid.NewString(),
		transport:    transport,
		connectedAt:  now,
		lastActivity: now,
	}
	r.conns[conn.id] = conn
	r.order = append(r.order, conn.id)
	return conn
}

func (r *registry) get(id string) *connection {
	return r.conns[id]
}

// findByUsername returns the identified connection bound to name,
// case-insensitively, or nil.
func (r *registry) findByUsername(name string) *connection {
	for _, id := range r.order {
		conn := r.conns[id]
		if conn != nil && conn.identified() && strings.EqualFold(conn.username, name) {
			return conn
		}
	}
	return nil
}

func (r *registry) touch(id string) {
	if conn := r.conns[id]; conn != nil {
		conn.lastActivity = r.clock.Now()
	}
}

// remove detaches the connection and returns it for downstream cleanup.
// Session state is untouched; the caller cascades.
func (r *registry) remove(id string) *connection {
	conn := r.conns[id]
	if conn == nil {
		return nil
	}
	delete(r.conns, id)
	for i, cid := range r.order {
		if cid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return conn
}

func (r *registry) size() int {
	return len(r.conns)
}

// all returns every registered connection in insertion order.
func (r *registry) all() []*connection {
	out := make([]*connection, 0, len(r.conns))
	for _, id := range r.order {
		if conn := r.conns[id]; conn != nil {
			out = append(out, conn)
		}
	}
	return out
}

// users returns snapshots of all identified connections.
func (r *registry) users() []domain.ConnectedUser {
	out := make([]domain.ConnectedUser, 0, len(r.conns))
	for _, conn := range r.all() {
		if conn.identified() {
			out = append(out, conn.snapshot())
		}
	}
	return out
}
