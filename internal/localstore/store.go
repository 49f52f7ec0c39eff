package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/circles/internal/models"
)

const (
	// SnapshotKey is the fixed key the offline snapshot lives under
	SnapshotKey = "wtfBoardsData"

	// documentVersion is written into every saved document
	documentVersion = 1
)

// Snapshot is the whole offline state: every local board's notes and the
// board that was last active
type Snapshot struct {
	ActiveBoardID string
	Boards        map[string][]models.Note
}

// Empty reports whether the snapshot holds no boards
func (s Snapshot) Empty() bool {
	return len(s.Boards) == 0
}

// document is the persisted layout. Documents written before versioning
// omit the version field and decode as version 1.
type document struct {
	Version       int                      `json:"version,omitempty"`
	ActiveBoardID *string                  `json:"activeBoardId"`
	Boards        map[string][]models.Note `json:"boards"`
}

// rawDocument defers decoding each board so one bad board does not take the
// others down with it
type rawDocument struct {
	Version       int                        `json:"version,omitempty"`
	ActiveBoardID *string                    `json:"activeBoardId"`
	Boards        map[string]json.RawMessage `json:"boards"`
}

// Store reads and writes the snapshot document through a KV
type Store struct {
	kv  KV
	key string
}

// NewStore returns a Store bound to the snapshot key
func NewStore(kv KV) *Store {
	return &Store{kv: kv, key: SnapshotKey}
}

// Load returns the stored snapshot. A missing, unreadable or malformed
// document yields an empty snapshot rather than an error.
func (s *Store) Load() Snapshot {
	empty := Snapshot{Boards: map[string][]models.Note{}}

	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		slog.Warn("failed to read local snapshot", "error", err)
		return empty
	}
	if !ok || len(data) == 0 {
		return empty
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("discarding malformed local snapshot", "error", err)
		return empty
	}
	if doc.Version > documentVersion {
		slog.Warn("local snapshot has unknown version", "version", doc.Version)
		return empty
	}

	snap := Snapshot{Boards: make(map[string][]models.Note, len(doc.Boards))}
	for id, raw := range doc.Boards {
		var notes []models.Note
		if err := json.Unmarshal(raw, &notes); err != nil {
			slog.Warn("dropping unreadable board from local snapshot", "board", id, "error", err)
			continue
		}
		snap.Boards[id] = repairNotes(id, models.NormalizeNotes(notes))
	}
	if doc.ActiveBoardID != nil {
		snap.ActiveBoardID = *doc.ActiveBoardID
	}
	return snap
}

// repairNotes drops notes that fail validation and later duplicates of an id
func repairNotes(boardID string, notes []models.Note) []models.Note {
	if models.ValidateNotes(notes) == nil {
		return notes
	}
	seen := make(map[string]bool, len(notes))
	kept := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if err := n.Validate(); err != nil || seen[n.ID] {
			slog.Warn("dropping invalid note from local snapshot", "board", boardID, "note", n.ID)
			continue
		}
		seen[n.ID] = true
		kept = append(kept, n)
	}
	return kept
}

// Save overwrites the stored document with snap
func (s *Store) Save(snap Snapshot) error {
	doc := document{
		Version: documentVersion,
		Boards:  make(map[string][]models.Note, len(snap.Boards)),
	}
	if snap.ActiveBoardID != "" {
		id := snap.ActiveBoardID
		doc.ActiveBoardID = &id
	}
	for id, notes := range snap.Boards {
		doc.Boards[id] = models.NormalizeNotes(notes)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Clear removes the stored document
func (s *Store) Clear() error {
	if err := s.kv.Delete(s.key); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
