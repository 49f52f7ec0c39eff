// Package session holds the active board and the pure note mutations applied to it.
//
// Every mutation takes the current note list and returns a new one. Inputs are
// never modified, so callers may compare old and new lists to detect change.
// A mutation that cannot apply (blank text, unknown id, invalid zone) returns
// its input unchanged.
package session

import (
	"strings"

	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/types"
)

// AddNote appends a note in the confused zone with no actions
func AddNote(notes []models.Note, text string) []models.Note {
	if strings.TrimSpace(text) == "" {
		return notes
	}
	out := make([]models.Note, len(notes), len(notes)+1)
	copy(out, notes)
	return append(out, models.Note{
		ID:          types.NewNoteID(),
		Text:        text,
		Zone:        models.ZoneConfused,
		NextActions: []models.Action{},
	})
}

// MoveNote sets the zone of the matching note
func MoveNote(notes []models.Note, noteID string, zone models.Zone) []models.Note {
	if !zone.Valid() {
		return notes
	}
	return updateNote(notes, noteID, func(n *models.Note) bool {
		if n.Zone == zone {
			return false
		}
		n.Zone = zone
		return true
	})
}

// AddAction appends an open action to the matching note
func AddAction(notes []models.Note, noteID, text string) []models.Note {
	if strings.TrimSpace(text) == "" {
		return notes
	}
	return updateNote(notes, noteID, func(n *models.Note) bool {
		actions := make([]models.Action, len(n.NextActions), len(n.NextActions)+1)
		copy(actions, n.NextActions)
		n.NextActions = append(actions, models.Action{
			ID:   types.NewActionID(),
			Text: text,
		})
		return true
	})
}

// ToggleAction flips the completed flag of one action on the matching note
func ToggleAction(notes []models.Note, noteID, actionID string) []models.Note {
	return updateNote(notes, noteID, func(n *models.Note) bool {
		for i := range n.NextActions {
			if n.NextActions[i].ID == actionID {
				actions := make([]models.Action, len(n.NextActions))
				copy(actions, n.NextActions)
				actions[i].Completed = !actions[i].Completed
				n.NextActions = actions
				return true
			}
		}
		return false
	})
}

// SaveReflection replaces the five-whys record of the matching note
func SaveReflection(notes []models.Note, noteID string, data models.FiveWhys) []models.Note {
	return updateNote(notes, noteID, func(n *models.Note) bool {
		r := data
		n.Reflection = &r
		return true
	})
}

// updateNote copies the list and applies fn to the note with noteID.
// Returns the original list when the note is missing or fn reports no change.
func updateNote(notes []models.Note, noteID string, fn func(*models.Note) bool) []models.Note {
	for i := range notes {
		if notes[i].ID != noteID {
			continue
		}
		n := notes[i]
		if !fn(&n) {
			return notes
		}
		out := make([]models.Note, len(notes))
		copy(out, notes)
		out[i] = n
		return out
	}
	return notes
}

// FindNote returns the note with the given id
func FindNote(notes []models.Note, noteID string) (models.Note, bool) {
	for _, n := range notes {
		if n.ID == noteID {
			return n, true
		}
	}
	return models.Note{}, false
}
