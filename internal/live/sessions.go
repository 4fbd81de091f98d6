package live

import (
	"time"

	"github.com/google/uuid"

	"github.com/jamcast/jamcast/internal/domain"
)

// jamSession is the authoritative record for one jam session. Participants
// are connection ids; the host id is always among them and only session
// termination removes it.
type jamSession struct {
	id            string
	name          string
	hostID        string
	hostUsername  string
	createdAt     time.Time
	participants  []string
	queue         []domain.Song
	currentSong   *domain.Song
	playbackState domain.PlaybackState
	progress      float64
}

func (s *jamSession) isParticipant(connID string) bool {
	for _, id := range s.participants {
		if id == connID {
			return true
		}
	}
	return false
}

func (s *jamSession) removeParticipant(connID string) {
	for i, id := range s.participants {
		if id == connID {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return
		}
	}
}

// currentIndex returns the queue index of the current song by id match,
// or -1 when there is no current song or it is not in the queue.
func (s *jamSession) currentIndex() int {
	if s.currentSong == nil {
		return -1
	}
	for i, song := range s.queue {
		if song.ID == s.currentSong.ID {
			return i
		}
	}
	return -1
}

// isCurrent reports whether the queue entry at index i is the current song.
func (s *jamSession) isCurrent(i int) bool {
	return s.currentSong != nil && i >= 0 && i < len(s.queue) && s.queue[i].ID == s.currentSong.ID
}

func (s *jamSession) snapshot() domain.JamSession {
	snap := domain.JamSession{
		ID:            s.id,
		Name:          s.name,
		HostID:        s.hostID,
		HostUsername:  s.hostUsername,
		CreatedAt:     s.createdAt.UnixMilli(),
		Participants:  append([]string(nil), s.participants...),
		Queue:         append([]domain.Song(nil), s.queue...),
		PlaybackState: s.playbackState,
		Progress:      s.progress,
	}
	if s.currentSong != nil {
		song := *s.currentSong
		snap.CurrentSong = &song
	}
	return snap
}

// sessionStore owns the session-id keyed store. Hub goroutine only.
type sessionStore struct {
	sessions map[string]*jamSession
	order    []string
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*jamSession)}
}

func (st *sessionStore) create(name string, host *connection, createdAt time.Time) *jamSession {
	sess := &jamSession{
		id:            uuid.NewString(),
		name:          name,
		hostID:        host.id,
		hostUsername:  host.username,
		createdAt:     createdAt,
		participants:  []string{host.id},
		queue:         []domain.Song{},
		playbackState: domain.StatePaused,
	}
	st.sessions[sess.id] = sess
	st.order = append(st.order, sess.id)
	return sess
}

func (st *sessionStore) get(id string) *jamSession {
	return st.sessions[id]
}

func (st *sessionStore) delete(id string) {
	delete(st.sessions, id)
	for i, sid := range st.order {
		if sid == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
}

func (st *sessionStore) size() int {
	return len(st.sessions)
}

func (st *sessionStore) all() []domain.JamSession {
	out := make([]domain.JamSession, 0, len(st.sessions))
	for _, id := range st.order {
		if sess := st.sessions[id]; sess != nil {
			out = append(out, sess.snapshot())
		}
	}
	return out
}
