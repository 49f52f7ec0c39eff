package events

import (
	"time"

	"github.com/thenoetrevino/circles/internal/models"
)

// ProtocolVersion is stamped on every wire message
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBoardUpdated EventType = "board_updated"
	EventPing         EventType = "ping"
	EventPong         EventType = "pong"
)

// Event is a change notification for one board. Content carries the full
// note list as of UpdatedAt.
type Event struct {
	Type       EventType
	BoardID    string        // which board was modified
	Content    []models.Note `json:",omitempty"`
	UpdatedAt  time.Time     // row timestamp after the write
	Timestamp  time.Time     // when the event was emitted
	SequenceID int64         // assigned by the daemon, monotonically increasing
}

// SubscribeMessage is sent by clients to filter which boards they hear about
type SubscribeMessage struct {
	BoardID string // "" = all boards
}

// Message wraps events and control messages for the wire protocol
type Message struct {
	Version   int               `json:",omitempty"`
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}

// Matches reports whether a subscription for boardID should receive ev
func (ev Event) Matches(boardID string) bool {
	return boardID == "" || ev.BoardID == "" || ev.BoardID == boardID
}
