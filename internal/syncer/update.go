package syncer

import (
	"time"

	"github.com/thenoetrevino/circles/internal/models"
)

// State is where the controller is in the debounced write cycle
type State int

const (
	StateIdle State = iota
	// StatePendingWrite means the debounce timer is armed
	StatePendingWrite
	// StateWriting means a store write is in flight
	StateWriting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingWrite:
		return "pending_write"
	case StateWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// UpdateKind classifies what an Update reports
type UpdateKind int

const (
	// UpdateNotesReplaced means remote content replaced the active board's notes
	UpdateNotesReplaced UpdateKind = iota + 1
	// UpdateSaved means a debounced write reached the store
	UpdateSaved
	// UpdateMessage carries a user-facing message, usually a store failure
	UpdateMessage
	// UpdateStoreChanged means the controller switched between local and remote
	UpdateStoreChanged
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateNotesReplaced:
		return "notes_replaced"
	case UpdateSaved:
		return "saved"
	case UpdateMessage:
		return "message"
	case UpdateStoreChanged:
		return "store_changed"
	default:
		return "unknown"
	}
}

// Update is delivered to whoever renders the board
type Update struct {
	Kind    UpdateKind
	BoardID string
	Notes   []models.Note
	Message string
	Err     error
	At      time.Time
}

// Timer is the part of *time.Timer the controller needs
type Timer interface {
	Stop() bool
}

// TimerFunc schedules fn after d. time.AfterFunc is the default.
type TimerFunc func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
