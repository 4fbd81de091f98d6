package live

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jamcast/jamcast/internal/domain"
	"github.com/jamcast/jamcast/internal/errors"
	"github.com/jamcast/jamcast/internal/metrics"
)

// handleMessage decodes one inbound frame, checks identity and authority,
// and dispatches to exactly one handler. Rejections produce an error frame
// to the sender and leave all state untouched.
func (h *Hub) handleMessage(c messageCmd) {
	conn := h.conns.get(c.connID)
	if conn == nil {
		return
	}

	msg, err := domain.DecodeInbound(c.data)
	if err != nil {
		h.reject(conn, err)
		return
	}
	metrics.MessagesReceivedTotal.WithLabelValues(domain.KindOf(msg)).Inc()

	// Any well-formed message counts as liveness.
	h.conns.touch(conn.id)

	if !conn.identified() {
		switch msg.(type) {
		case domain.Connect, domain.Ping, domain.Disconnect:
		default:
			h.reject(conn, errors.ValidationError("connect with a username first"))
			return
		}
	}

	switch m := msg.(type) {
	case domain.Connect:
		h.handleIdentify(conn, m)
	case domain.ActivityReport:
		h.handleActivity(conn, m)
	case domain.Ping:
		h.sendTo(conn, domain.NewPong(h.now()))
	case domain.Disconnect:
		h.dropConnection(conn, "Client disconnected")
	case domain.JamCreate:
		h.handleJamCreate(conn, m)
	case domain.JamJoin:
		h.handleJamJoin(conn, m)
	case domain.JamLeave:
		h.handleJamLeave(conn)
	case domain.JamAddToQueue:
		h.handleJamAddToQueue(conn, m)
	case domain.JamUpdateState:
		h.handleJamUpdateState(conn, m)
	case domain.JamSyncRequest:
		h.handleJamSyncRequest(conn)
	case domain.JamNextTrack:
		h.handleJamNextTrack(conn)
	case domain.JamRemoveFromQueue:
		h.handleJamRemoveFromQueue(conn, m)
	case domain.JamReorderQueue:
		h.handleJamReorderQueue(conn, m)
	case domain.JamKickParticipant:
		h.handleJamKick(conn, m)
	case domain.JamReplaceQueue:
		h.handleJamReplaceQueue(conn, m)
	default:
		h.reject(conn, errors.ValidationError("unknown message type"))
	}
}

// reject answers the sender with an error frame. Rejections are
// side-effect-free: no state was mutated and nothing is broadcast.
func (h *Hub) reject(conn *connection, err error) {
	metrics.MessageErrorsTotal.WithLabelValues(string(errors.TypeOf(err))).Inc()

	message := err.Error()
	if e, ok := err.(*errors.Error); ok {
		message = e.Message
	}
	h.sendTo(conn, domain.NewError(message, h.now()))
}

func (h *Hub) handleIdentify(conn *connection, m domain.Connect) {
	username := strings.TrimSpace(m.Username)
	if username == "" {
		h.reject(conn, errors.ValidationError("username is required"))
		return
	}
	if conn.identified() {
		h.reject(conn, errors.ConflictError("already connected as "+conn.username))
		return
	}

	// A username binds to exactly one live connection: evict the prior
	// holder before installing the new binding.
	if prior := h.conns.findByUsername(username); prior != nil && prior.id != conn.id {
		slog.Info("Evicting prior connection for duplicate login", "username", username, "client_id", prior.id)
		metrics.ConnectionsEvictedTotal.WithLabelValues("duplicate_login").Inc()
		h.sendTo(prior, domain.NewError("You have been disconnected due to a new login", h.now()))
		h.dropConnection(prior, "New connection")
	}

	conn.username = username
	metrics.IdentifiedUsers.Set(float64(len(h.conns.users())))
	slog.Info("User connected", "client_id", conn.id, "username", username)

	h.sendTo(conn, domain.NewConnected(username, h.feed.recent(), h.conns.users(), h.now()))
	h.broadcastAll(domain.NewUserJoined(username, h.conns.users(), h.now()), conn.id)
}

func (h *Hub) handleActivity(conn *connection, m domain.ActivityReport) {
	activity := domain.Activity{
		ID:        uuid.NewString(),
		Username:  conn.username,
		Song:      m.Song,
		Action:    m.Action,
		Timestamp: h.now(),
	}
	h.feed.record(activity)
	metrics.ActivityEventsTotal.WithLabelValues(string(m.Action)).Inc()
	slog.Debug("Activity recorded",
		"username", conn.username,
		"action", m.Action,
		"title", m.Song.Title,
		"artist", m.Song.Artist,
	)

	// Activity fans out to everyone, sender included.
	h.broadcastAll(domain.NewActivityEvent(activity, h.now()), "")
}

func (h *Hub) handleJamCreate(conn *connection, m domain.JamCreate) {
	if conn.joinedSessionID != "" {
		h.reject(conn, errors.MembershipError("already in a jam session"))
		return
	}

	sess := h.sessions.create(strings.TrimSpace(m.Name), conn, h.clock.Now())
	conn.joinedSessionID = sess.id
	conn.isHost = true
	metrics.ActiveJamSessions.Set(float64(h.sessions.size()))
	slog.Info("Jam session created", "session_id", sess.id, "name", sess.name, "host", conn.username)

	h.sendTo(conn, domain.NewJamCreated(sess.snapshot(), h.now()))
	h.broadcastAll(domain.NewJamListUpdated(h.sessions.all(), h.now()), conn.id)
}

func (h *Hub) handleJamJoin(conn *connection, m domain.JamJoin) {
	if conn.joinedSessionID != "" {
		h.reject(conn, errors.MembershipError("already in a jam session"))
		return
	}
	sess := h.sessions.get(m.SessionID)
	if sess == nil {
		h.reject(conn, errors.NotFoundError("jam session not found"))
		return
	}

	sess.participants = append(sess.participants, conn.id)
	conn.joinedSessionID = sess.id
	conn.isHost = false
	slog.Info("Participant joined jam session", "session_id", sess.id, "username", conn.username)

	h.sendTo(conn, domain.NewJamJoined(sess.snapshot(), h.now()))
	h.broadcastSession(sess, domain.NewJamUpdated(sess.snapshot(), h.now()), conn.id)
}

func (h *Hub) handleJamLeave(conn *connection) {
	if conn.joinedSessionID == "" {
		h.reject(conn, errors.MembershipError("not in a jam session"))
		return
	}
	h.cascadeLeave(conn)
	h.sendTo(conn, domain.NewJamLeft("", h.now()))
}

func (h *Hub) handleJamAddToQueue(conn *connection, m domain.JamAddToQueue) {
	sess, err := h.memberSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}

	queueWasEmpty := len(sess.queue) == 0
	sess.queue = append(sess.queue, m.Song)
	if queueWasEmpty && sess.currentSong == nil {
		song := m.Song
		sess.currentSong = &song
	}

	h.broadcastSession(sess, domain.NewJamQueueUpdated(sess.snapshot(), h.now()), "")
}

func (h *Hub) handleJamUpdateState(conn *connection, m domain.JamUpdateState) {
	sess, err := h.hostSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}

	if m.PlaybackState != nil {
		sess.playbackState = *m.PlaybackState
	}
	if m.Progress != nil {
		sess.progress = *m.Progress
	}
	if m.Song != nil {
		song := *m.Song
		sess.currentSong = &song
	}

	h.broadcastSession(sess, domain.NewJamStateUpdated(sess.snapshot(), h.now()), conn.id)
}

func (h *Hub) handleJamSyncRequest(conn *connection) {
	sess, err := h.memberSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}
	h.sendTo(conn, domain.NewJamSyncResponse(sess.snapshot(), h.now()))
}

func (h *Hub) handleJamNextTrack(conn *connection) {
	sess, err := h.hostSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}

	idx := sess.currentIndex()
	if idx >= 0 && idx+1 < len(sess.queue) {
		song := sess.queue[idx+1]
		sess.currentSong = &song
		sess.progress = 0
	} else {
		sess.currentSong = nil
		sess.playbackState = domain.StatePaused
		sess.progress = 0
	}

	h.broadcastSession(sess, domain.NewJamStateUpdated(sess.snapshot(), h.now()), conn.id)
}

func (h *Hub) handleJamRemoveFromQueue(conn *connection, m domain.JamRemoveFromQueue) {
	sess, err := h.hostSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}
	if m.SongIndex < 0 || m.SongIndex >= len(sess.queue) {
		h.reject(conn, errors.NotFoundError("song index out of range"))
		return
	}
	if sess.isCurrent(m.SongIndex) {
		h.reject(conn, errors.ValidationError("cannot remove the currently playing song"))
		return
	}

	sess.queue = append(sess.queue[:m.SongIndex], sess.queue[m.SongIndex+1:]...)
	h.broadcastSession(sess, domain.NewJamQueueUpdated(sess.snapshot(), h.now()), "")
}

func (h *Hub) handleJamReorderQueue(conn *connection, m domain.JamReorderQueue) {
	sess, err := h.hostSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}
	if m.FromIndex < 0 || m.FromIndex >= len(sess.queue) || m.ToIndex < 0 || m.ToIndex >= len(sess.queue) {
		h.reject(conn, errors.NotFoundError("queue index out of range"))
		return
	}
	if sess.isCurrent(m.FromIndex) || sess.isCurrent(m.ToIndex) {
		h.reject(conn, errors.ValidationError("cannot reorder the currently playing song"))
		return
	}

	song := sess.queue[m.FromIndex]
	sess.queue = append(sess.queue[:m.FromIndex], sess.queue[m.FromIndex+1:]...)
	tail := append([]domain.Song(nil), sess.queue[m.ToIndex:]...)
	sess.queue = append(sess.queue[:m.ToIndex], song)
	sess.queue = append(sess.queue, tail...)

	h.broadcastSession(sess, domain.NewJamQueueUpdated(sess.snapshot(), h.now()), "")
}

func (h *Hub) handleJamKick(conn *connection, m domain.JamKickParticipant) {
	sess, err := h.hostSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}
	if m.ParticipantID == sess.hostID {
		h.reject(conn, errors.ValidationError("cannot kick the session host"))
		return
	}
	if !sess.isParticipant(m.ParticipantID) {
		h.reject(conn, errors.NotFoundError("participant not found"))
		return
	}

	sess.removeParticipant(m.ParticipantID)
	if target := h.conns.get(m.ParticipantID); target != nil {
		target.clearMembership()
		metrics.ConnectionsEvictedTotal.WithLabelValues("kicked").Inc()
		h.sendTo(target, domain.NewJamParticipantKicked("You have been removed from the jam session", h.now()))
	}
	slog.Info("Participant kicked", "session_id", sess.id, "participant_id", m.ParticipantID)

	h.broadcastSession(sess, domain.NewJamUpdated(sess.snapshot(), h.now()), conn.id)
}

func (h *Hub) handleJamReplaceQueue(conn *connection, m domain.JamReplaceQueue) {
	sess, err := h.hostSession(conn)
	if err != nil {
		h.reject(conn, err)
		return
	}

	sess.queue = append([]domain.Song(nil), m.Queue...)
	h.broadcastSession(sess, domain.NewJamQueueUpdated(sess.snapshot(), h.now()), "")
}

// memberSession resolves the session the connection participates in.
func (h *Hub) memberSession(conn *connection) (*jamSession, *errors.Error) {
	if conn.joinedSessionID == "" {
		return nil, errors.MembershipError("not in a jam session")
	}
	sess := h.sessions.get(conn.joinedSessionID)
	if sess == nil || !sess.isParticipant(conn.id) {
		return nil, errors.NotFoundError("jam session not found")
	}
	return sess, nil
}

// hostSession resolves the session the connection hosts.
func (h *Hub) hostSession(conn *connection) (*jamSession, *errors.Error) {
	sess, err := h.memberSession(conn)
	if err != nil {
		return nil, err
	}
	if sess.hostID != conn.id {
		return nil, errors.AuthorityError("only the host can do that")
	}
	return sess, nil
}
