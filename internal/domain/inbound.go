package domain

import (
	"encoding/json"
	"fmt"

	"github.com/jamcast/jamcast/internal/errors"
)

// Inbound is the closed set of client-to-server messages. Exactly one
// concrete type exists per wire kind; the router dispatches by type switch.
type Inbound interface{ isInbound() }

type baseInbound struct{}

func (baseInbound) isInbound() {}

type Connect struct {
	baseInbound
	Username string
}

type ActivityReport struct {
	baseInbound
	Song   Song
	Action Action
}

type Ping struct{ baseInbound }

type Disconnect struct{ baseInbound }

type JamCreate struct {
	baseInbound
	Name string
}

type JamJoin struct {
	baseInbound
	SessionID string
}

type JamLeave struct{ baseInbound }

type JamAddToQueue struct {
	baseInbound
	Song Song
}

// JamUpdateState carries a partial update: nil fields were absent.
type JamUpdateState struct {
	baseInbound
	PlaybackState *PlaybackState
	Progress      *float64
	Song          *Song
}

type JamSyncRequest struct{ baseInbound }

type JamNextTrack struct{ baseInbound }

type JamRemoveFromQueue struct {
	baseInbound
	SongIndex int
}

type JamReorderQueue struct {
	baseInbound
	FromIndex int
	ToIndex   int
}

type JamKickParticipant struct {
	baseInbound
	ParticipantID string
}

type JamReplaceQueue struct {
	baseInbound
	Queue []Song
}

// inboundEnvelope mirrors the wire format: a type discriminator plus the
// union of all payload fields.
type inboundEnvelope struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Activity *struct {
		Song   Song   `json:"song"`
		Action Action `json:"action"`
	} `json:"activity"`
	JamSessionID   string         `json:"jamSessionId"`
	JamSessionName string         `json:"jamSessionName"`
	Song           *Song          `json:"song"`
	PlaybackState  *PlaybackState `json:"playbackState"`
	Progress       *float64       `json:"progress"`
	Queue          []Song         `json:"queue"`
	SongIndex      *int           `json:"songIndex"`
	FromIndex      *int           `json:"fromIndex"`
	ToIndex        *int           `json:"toIndex"`
	ParticipantID  string         `json:"participantId"`
}

// DecodeInbound parses one raw frame into its concrete message type,
// rejecting unknown kinds and missing required fields.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.ValidationError("invalid message format")
	}

	switch env.Type {
	case "connect":
		if env.Username == "" {
			return nil, errors.ValidationError("username is required")
		}
		return Connect{Username: env.Username}, nil

	case "activity":
		if env.Activity == nil {
			return nil, errors.ValidationError("activity payload is required")
		}
		if !env.Activity.Action.Valid() {
			return nil, errors.ValidationError(fmt.Sprintf("unknown activity action %q", env.Activity.Action))
		}
		return ActivityReport{Song: env.Activity.Song, Action: env.Activity.Action}, nil

	case "ping", "heartbeat":
		return Ping{}, nil

	case "disconnect":
		return Disconnect{}, nil

	case "jam_create":
		if env.JamSessionName == "" {
			return nil, errors.ValidationError("jam session name is required")
		}
		return JamCreate{Name: env.JamSessionName}, nil

	case "jam_join":
		if env.JamSessionID == "" {
			return nil, errors.ValidationError("jam session id is required")
		}
		return JamJoin{SessionID: env.JamSessionID}, nil

	case "jam_leave":
		return JamLeave{}, nil

	case "jam_add_to_queue":
		if env.Song == nil {
			return nil, errors.ValidationError("song is required")
		}
		return JamAddToQueue{Song: *env.Song}, nil

	case "jam_update_state":
		if env.PlaybackState != nil && !env.PlaybackState.Valid() {
			return nil, errors.ValidationError(fmt.Sprintf("unknown playback state %q", *env.PlaybackState))
		}
		return JamUpdateState{PlaybackState: env.PlaybackState, Progress: env.Progress, Song: env.Song}, nil

	case "jam_sync_request":
		return JamSyncRequest{}, nil

	case "jam_next_track":
		return JamNextTrack{}, nil

	case "jam_remove_from_queue":
		if env.SongIndex == nil {
			return nil, errors.ValidationError("song index is required")
		}
		return JamRemoveFromQueue{SongIndex: *env.SongIndex}, nil

	case "jam_reorder_queue":
		if env.FromIndex == nil || env.ToIndex == nil {
			return nil, errors.ValidationError("from and to indices are required")
		}
		return JamReorderQueue{FromIndex: *env.FromIndex, ToIndex: *env.ToIndex}, nil

	case "jam_kick_participant":
		if env.ParticipantID == "" {
			return nil, errors.ValidationError("participant id is required")
		}
		return JamKickParticipant{ParticipantID: env.ParticipantID}, nil

	case "jam_update_queue_from_local":
		if env.Queue == nil {
			return nil, errors.ValidationError("queue is required")
		}
		return JamReplaceQueue{Queue: env.Queue}, nil
	}

	return nil, errors.ValidationError(fmt.Sprintf("unknown message type %q", env.Type))
}

// KindOf returns the wire type string for an inbound message, for metrics.
func KindOf(m Inbound) string {
	switch m.(type) {
	case Connect:
		return "connect"
	case ActivityReport:
		return "activity"
	case Ping:
		return "ping"
	case Disconnect:
		return "disconnect"
	case JamCreate:
		return "jam_create"
	case JamJoin:
		return "jam_join"
	case JamLeave:
		return "jam_leave"
	case JamAddToQueue:
		return "jam_add_to_queue"
	case JamUpdateState:
		return "jam_update_state"
	case JamSyncRequest:
		return "jam_sync_request"
	case JamNextTrack:
		return "jam_next_track"
	case JamRemoveFromQueue:
		return "jam_remove_from_queue"
	case JamReorderQueue:
		return "jam_reorder_queue"
	case JamKickParticipant:
		return "jam_kick_participant"
	case JamReplaceQueue:
		return "jam_update_queue_from_local"
	}
	return "unknown"
}
