// Package domain holds the model types, wire protocol, and capability
// interfaces shared between the live hub and the HTTP layer.
package domain

// PlaybackState is the host-authoritative play/pause state of a jam session.
type PlaybackState string

const (
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
)

// Valid reports whether s is a known playback state.
func (s PlaybackState) Valid() bool {
	return s == StatePlaying || s == StatePaused
}

// Action is a playback activity action.
type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionSkip  Action = "skip"
	ActionSeek  Action = "seek"
)

// Valid reports whether a is a known activity action.
func (a Action) Valid() bool {
	switch a {
	case ActionPlay, ActionPause, ActionSkip, ActionSeek:
		return true
	}
	return false
}

// Artwork is one artwork variant of a song.
type Artwork struct {
	Src string `json:"src"`
}

// Song is a track descriptor as exchanged on the wire. The server treats it
// as opaque apart from the id, which queue operations match on.
type Song struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Artwork  []Artwork `json:"artwork,omitempty"`
	Duration float64   `json:"duration,omitempty"`
}

// Activity is an immutable playback activity event.
type Activity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Song      Song   `json:"song"`
	Action    Action `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

// ConnectedUser is a snapshot of an identified connection.
type ConnectedUser struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	LastActivity       int64  `json:"lastActivity"`
	ConnectedAt        int64  `json:"connectedAt"`
	IsJamSessionHost   bool   `json:"isJamSessionHost,omitempty"`
	JoinedJamSessionID string `json:"joinedJamSessionId,omitempty"`
}

// JamSession is a snapshot of one jam session.
type JamSession struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	HostID        string        `json:"hostId"`
	HostUsername  string        `json:"hostUsername"`
	CreatedAt     int64         `json:"createdAt"`
	Participants  []string      `json:"participants"`
	Queue         []Song        `json:"queue"`
	CurrentSong   *Song         `json:"currentSong,omitempty"`
	PlaybackState PlaybackState `json:"playbackState"`
	Progress      float64       `json:"progress"`
}

// Stats is the aggregate view exposed on the reporting surface.
type Stats struct {
	ConnectedClients int             `json:"connectedClients"`
	TotalActivities  int             `json:"totalActivities"`
	RecentActivities int             `json:"recentActivities"`
	ActiveUsers      []ConnectedUser `json:"activeUsers"`
	JamSessions      int             `json:"jamSessions"`
	Uptime           float64         `json:"uptime"`
}

// Transport is the write side of one live connection. The hub owns exactly
// one Transport per registered connection and never hands it out.
type Transport interface {
	// Send delivers one text frame. Delivery is best-effort: an error means
	// the frame was dropped, not that the connection is unusable.
	Send(data []byte) error
	// Close tears down the connection, best-effort announcing reason.
	Close(reason string)
}
