// Package remote is the hosted board store as the sync layer sees it: rows
// with row-level authorization plus a change subscription per board.
package remote

import (
	"context"
	"time"

	"github.com/thenoetrevino/circles/internal/models"
)

// UpdateFunc receives the full note list of a board after a write
type UpdateFunc func(notes []models.Note, updatedAt time.Time)

// Store is the remote board store. Errors are *models.StoreError values;
// fail-closed lookups unwrap to models.ErrBoardNotFound.
type Store interface {
	ListAccessibleBoards(ctx context.Context, userID string) ([]models.BoardMeta, error)
	// GetBoard reads as the current auth session's user, or anonymously
	GetBoard(ctx context.Context, id string) (*models.BoardMeta, error)
	CreateBoard(ctx context.Context, userID, title string) (*models.BoardMeta, error)
	CreateBoardWithContent(ctx context.Context, userID, title string, notes []models.Note) (*models.BoardMeta, error)
	UpdateContent(ctx context.Context, id string, notes []models.Note) error
	SetShared(ctx context.Context, id string, shared bool) error
	// SubscribeToBoard delivers at-least-once, including the caller's own writes
	SubscribeToBoard(id string, onUpdate UpdateFunc) (unsubscribe func(), err error)

	ListOwnedTitles(ctx context.Context, userID string) ([]string, error)
	HasGrant(ctx context.Context, userID, boardID string) (bool, error)
	AddGrant(ctx context.Context, userID, boardID string) error
}

// Viewer identifies who is asking. An empty id is an anonymous viewer.
type Viewer interface {
	CurrentUserID() string
}
