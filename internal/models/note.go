package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is a follow-up step attached to a note. It has no lifecycle of its own.
type Action struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// FiveWhys holds the answers of a five-whys reflection on a note
type FiveWhys struct {
	Why1 string `json:"why1"`
	Why2 string `json:"why2"`
	Why3 string `json:"why3"`
	Why4 string `json:"why4"`
	Why5 string `json:"why5"`
}

// HasContent reports whether any answer is non-blank
func (f FiveWhys) HasContent() bool {
	for _, v := range f.Answers() {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Answers returns the five answers in order
func (f FiveWhys) Answers() [5]string {
	return [5]string{f.Why1, f.Why2, f.Why3, f.Why4, f.Why5}
}

// Note is a sticky note on a board
type Note struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Zone        Zone      `json:"zone"`
	NextActions []Action  `json:"nextActions"`
	Reflection  *FiveWhys `json:"reflection,omitempty"`
}

// UnmarshalJSON decodes a note, accepting the older "fiveWhys" key for the
// reflection and normalizing a missing action list to an empty one.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var aux struct {
		plain
		FiveWhys *FiveWhys `json:"fiveWhys,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Note(aux.plain)
	if n.Reflection == nil && aux.FiveWhys != nil {
		n.Reflection = aux.FiveWhys
	}
	if n.NextActions == nil {
		n.NextActions = []Action{}
	}
	return nil
}

// Validate checks the invariants a stored note must satisfy
func (n Note) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidNote)
	}
	if !n.Zone.Valid() {
		return fmt.Errorf("%w: note %s has zone %q", ErrInvalidNote, n.ID, n.Zone)
	}
	return nil
}

// OpenActions counts actions that are not yet completed
func (n Note) OpenActions() int {
	count := 0
	for _, a := range n.NextActions {
		if !a.Completed {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the note
func (n Note) Clone() Note {
	out := n
	out.NextActions = make([]Action, len(n.NextActions))
	copy(out.NextActions, n.NextActions)
	if n.Reflection != nil {
		r := *n.Reflection
		out.Reflection = &r
	}
	return out
}

// NormalizeNotes guarantees a non-nil slice whose notes all carry a non-nil
// action list, so the result always encodes as a JSON array.
func NormalizeNotes(notes []Note) []Note {
	if notes == nil {
		return []Note{}
	}
	for i := range notes {
		if notes[i].NextActions == nil {
			notes[i].NextActions = []Action{}
		}
	}
	return notes
}

// CloneNotes deep-copies a note list
func CloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

// ValidateNotes validates every note and checks ids are unique within the list
func ValidateNotes(notes []Note) error {
	seen := make(map[string]bool, len(notes))
	for _, n := range notes {
		if err := n.Validate(); err != nil {
			return err
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidNote, n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}
