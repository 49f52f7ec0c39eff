package session

import "github.com/thenoetrevino/circles/internal/models"

// Session is the unit all editing operations act upon: the active board id and
// its in-memory notes. Mutations are no-ops while no board is active.
//
// A Session is not safe for concurrent use; the sync controller owns it and only
// touches it from its own goroutine.
type Session struct {
	activeID string
	title    string
	notes    []models.Note
}

// New returns a session with no active board
func New() *Session {
	return &Session{notes: []models.Note{}}
}

// Activate replaces the active board and its notes
func (s *Session) Activate(id, title string, notes []models.Note) {
	s.activeID = id
	s.title = title
	s.notes = models.NormalizeNotes(notes)
}

// Deactivate clears the active board
func (s *Session) Deactivate() {
	s.activeID = ""
	s.title = ""
	s.notes = []models.Note{}
}

// ActiveID returns the active board id, or "" when none is active
func (s *Session) ActiveID() string { return s.activeID }

// Title returns the active board's title
func (s *Session) Title() string { return s.title }

// Notes returns the current note list. Callers must treat it as read-only.
func (s *Session) Notes() []models.Note { return s.notes }

// Replace swaps the note list wholesale (used by remote reconciliation)
func (s *Session) Replace(notes []models.Note) {
	s.notes = models.NormalizeNotes(notes)
}

// Apply runs a mutation against the active board and reports whether the
// note list changed
func (s *Session) Apply(mutate func([]models.Note) []models.Note) bool {
	if s.activeID == "" {
		return false
	}
	next := mutate(s.notes)
	if sameList(next, s.notes) {
		return false
	}
	s.notes = next
	return true
}

// sameList reports whether two slices share the same backing array and length.
// Mutations return their input untouched on no-op, so identity is enough.
func sameList(a, b []models.Note) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
