package models

import "time"

// Board is a named collection of notes.
// Local boards use a generated human-readable name as ID; remote boards use an
// opaque ID assigned by the remote store.
type Board struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Notes   []Note `json:"notes"`
	OwnerID string `json:"ownerId,omitempty"`
	Shared  bool   `json:"shared"`
}

// GetID returns the board ID (used by quiet CLI output)
func (b Board) GetID() string {
	return b.ID
}

// BoardMeta is a board row as returned by a board store
type BoardMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   []Note    `json:"content"`
	OwnerID   string    `json:"ownerId,omitempty"`
	Shared    bool      `json:"shared"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID returns the board ID (used by quiet CLI output)
func (b *BoardMeta) GetID() string {
	return b.ID
}

// Board converts the row into a Board value
func (b *BoardMeta) Board() Board {
	return Board{
		ID:      b.ID,
		Title:   b.Title,
		Notes:   NormalizeNotes(CloneNotes(b.Content)),
		OwnerID: b.OwnerID,
		Shared:  b.Shared,
	}
}

// AccessGrant records that a user joined a shared board
type AccessGrant struct {
	UserID    string    `json:"userId"`
	BoardID   string    `json:"boardId"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an account known to the authentication service
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
