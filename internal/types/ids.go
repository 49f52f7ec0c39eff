// Package types holds identifier helpers shared across the board packages.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID prefixes. Boards whose ID starts with DemoBoardPrefix exist only on the
// client and are never written to, or subscribed on, the remote store.
const (
	NotePrefix      = "note-"
	ActionPrefix    = "action-"
	DemoBoardPrefix = "demo-"
)

// now is swapped in tests
var now = time.Now

// NewNoteID returns a note identifier built from the current time and a random
// suffix. Collision-resistant within a session, not globally unique.
func NewNoteID() string {
	return newTimestampedID(NotePrefix)
}

// NewActionID returns an action identifier in the same format as NewNoteID
func NewActionID() string {
	return newTimestampedID(ActionPrefix)
}

// NewBoardID returns an opaque identifier for a remote board row
func NewBoardID() string {
	return uuid.NewString()
}

// NewDemoBoardID returns an identifier for a client-only board
func NewDemoBoardID() string {
	return fmt.Sprintf("%sboard-%d", DemoBoardPrefix, now().UnixMilli())
}

// IsDemoBoard reports whether the board exists only on this client
func IsDemoBoard(boardID string) bool {
	return strings.HasPrefix(boardID, DemoBoardPrefix)
}

func newTimestampedID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d-%s", prefix, now().UnixMilli(), suffix)
}
