package domain

// Outbound wire kinds. The set is closed: every server-to-client frame is
// built by one of the constructors below, which stamp the kind constant.
const (
	KindConnected            = "connected"
	KindUserJoined           = "user_joined"
	KindUserLeft             = "user_left"
	KindActivity             = "activity"
	KindPong                 = "pong"
	KindHeartbeat            = "heartbeat"
	KindError                = "error"
	KindJamCreated           = "jam_created"
	KindJamJoined            = "jam_joined"
	KindJamLeft              = "jam_left"
	KindJamUpdated           = "jam_updated"
	KindJamQueueUpdated      = "jam_queue_updated"
	KindJamStateUpdated      = "jam_state_updated"
	KindJamSyncResponse      = "jam_sync_response"
	KindJamParticipantKicked = "jam_participant_kicked"
)

// Outbound is the server-to-client envelope. Field names match the wire
// format; unused fields are omitted per kind.
type Outbound struct {
	Type             string          `json:"type"`
	Timestamp        int64           `json:"timestamp"`
	ClientID         string          `json:"clientId,omitempty"`
	Username         string          `json:"username,omitempty"`
	Error            string          `json:"error,omitempty"`
	Activity         *Activity       `json:"activity,omitempty"`
	RecentActivities []Activity      `json:"recentActivities,omitempty"`
	ConnectedUsers   []ConnectedUser `json:"connectedUsers,omitempty"`
	JamSession       *JamSession     `json:"jamSession,omitempty"`
	JamSessions      []JamSession    `json:"jamSessions,omitempty"`
	Queue            []Song          `json:"queue,omitempty"`
	PlaybackState    PlaybackState   `json:"playbackState,omitempty"`
	Progress         *float64        `json:"progress,omitempty"`
	Song             *Song           `json:"song,omitempty"`
}

// NewWelcome is the pre-identify greeting carrying the assigned client id.
func NewWelcome(clientID string, ts int64) Outbound {
	return Outbound{Type: KindConnected, Timestamp: ts, ClientID: clientID}
}

// NewConnected acknowledges a successful identify with the current activity
// snapshot and user list.
func NewConnected(username string, activities []Activity, users []ConnectedUser, ts int64) Outbound {
	return Outbound{
		Type:             KindConnected,
		Timestamp:        ts,
		Username:         username,
		RecentActivities: activities,
		ConnectedUsers:   users,
	}
}

func NewUserJoined(username string, users []ConnectedUser, ts int64) Outbound {
	return Outbound{Type: KindUserJoined, Timestamp: ts, Username: username, ConnectedUsers: users}
}

func NewUserLeft(username string, users []ConnectedUser, ts int64) Outbound {
	return Outbound{Type: KindUserLeft, Timestamp: ts, Username: username, ConnectedUsers: users}
}

func NewActivityEvent(a Activity, ts int64) Outbound {
	return Outbound{Type: KindActivity, Timestamp: ts, Activity: &a}
}

func NewPong(ts int64) Outbound {
	return Outbound{Type: KindPong, Timestamp: ts}
}

func NewHeartbeat(ts int64) Outbound {
	return Outbound{Type: KindHeartbeat, Timestamp: ts}
}

func NewError(message string, ts int64) Outbound {
	return Outbound{Type: KindError, Timestamp: ts, Error: message}
}

func NewJamCreated(s JamSession, ts int64) Outbound {
	return Outbound{Type: KindJamCreated, Timestamp: ts, JamSession: &s}
}

func NewJamJoined(s JamSession, ts int64) Outbound {
	return Outbound{Type: KindJamJoined, Timestamp: ts, JamSession: &s}
}

// NewJamLeft acknowledges a voluntary leave (empty reason) or announces a
// session termination (reason set).
func NewJamLeft(reason string, ts int64) Outbound {
	return Outbound{Type: KindJamLeft, Timestamp: ts, Error: reason}
}

func NewJamUpdated(s JamSession, ts int64) Outbound {
	return Outbound{Type: KindJamUpdated, Timestamp: ts, JamSession: &s}
}

// NewJamListUpdated carries the full session listing, sent when sessions
// appear or disappear.
func NewJamListUpdated(sessions []JamSession, ts int64) Outbound {
	return Outbound{Type: KindJamUpdated, Timestamp: ts, JamSessions: sessions}
}

func NewJamQueueUpdated(s JamSession, ts int64) Outbound {
	return Outbound{Type: KindJamQueueUpdated, Timestamp: ts, JamSession: &s, Queue: s.Queue}
}

func NewJamStateUpdated(s JamSession, ts int64) Outbound {
	progress := s.Progress
	return Outbound{
		Type:          KindJamStateUpdated,
		Timestamp:     ts,
		JamSession:    &s,
		PlaybackState: s.PlaybackState,
		Progress:      &progress,
		Song:          s.CurrentSong,
	}
}

func NewJamSyncResponse(s JamSession, ts int64) Outbound {
	progress := s.Progress
	return Outbound{
		Type:          KindJamSyncResponse,
		Timestamp:     ts,
		JamSession:    &s,
		Queue:         s.Queue,
		PlaybackState: s.PlaybackState,
		Progress:      &progress,
		Song:          s.CurrentSong,
	}
}

func NewJamParticipantKicked(reason string, ts int64) Outbound {
	return Outbound{Type: KindJamParticipantKicked, Timestamp: ts, Error: reason}
}
