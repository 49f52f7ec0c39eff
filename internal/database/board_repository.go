package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/types"
)

// visibleTo is the row-level read rule: the viewer owns the board, the board
// is shared, or the viewer holds a grant. Takes the viewer id twice.
const visibleTo = `(b.user_id = ? OR b.shared = 1 OR EXISTS (
	SELECT 1 FROM board_grants g WHERE g.board_id = b.id AND g.user_id = ?))`

const boardColumns = `b.id, b.user_id, b.title, b.content, b.shared, b.updated_at`

// BoardRepo handles board rows and access grants
type BoardRepo struct {
	db        *sql.DB
	publisher events.Publisher
	now       func() time.Time
}

func scanBoard(row interface{ Scan(...any) error }) (*models.BoardMeta, error) {
	var (
		b         models.BoardMeta
		content   string
		updatedMs int64
	)
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Title, &content, &b.Shared, &updatedMs); err != nil {
		return nil, err
	}
	notes, err := decodeNotes(content)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", b.ID, err)
	}
	b.Content = notes
	b.UpdatedAt = fromMillis(updatedMs)
	return &b, nil
}

// Create inserts an empty, unshared board owned by ownerID
func (r *BoardRepo) Create(ctx context.Context, ownerID, title string) (*models.BoardMeta, error) {
	if ownerID == "" {
		return nil, models.ErrNotAuthenticated
	}
	id := types.NewBoardID()
	now := toMillis(r.now())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (id, user_id, title, content, shared, created_at, updated_at)
		 VALUES (?, ?, ?, '[]', 0, ?, ?)`,
		id, ownerID, title, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert board '%s': %w", title, err)
	}

	return r.Get(ctx, ownerID, id)
}

// CreateWithContent inserts a board and its notes in one statement
func (r *BoardRepo) CreateWithContent(ctx context.Context, ownerID, title string, notes []models.Note) (*models.BoardMeta, error) {
	if ownerID == "" {
		return nil, models.ErrNotAuthenticated
	}
	content, err := encodeNotes(notes)
	if err != nil {
		return nil, err
	}
	id := types.NewBoardID()
	now := toMillis(r.now())

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO boards (id, user_id, title, content, shared, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		id, ownerID, title, content, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert board '%s': %w", title, err)
	}
	return r.Get(ctx, ownerID, id)
}

// Get returns the board if viewerID may read it. viewerID may be empty for an
// anonymous viewer. Missing and forbidden are both ErrBoardNotFound.
func (r *BoardRepo) Get(ctx context.Context, viewerID, id string) (*models.BoardMeta, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards b WHERE b.id = ? AND `+visibleTo,
		id, viewerID, viewerID,
	)
	b, err := scanBoard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board %s: %w", id, err)
	}
	return b, nil
}

// ListAccessible returns boards the user owns or holds a grant for, most
// recently updated first
func (r *BoardRepo) ListAccessible(ctx context.Context, userID string) ([]models.BoardMeta, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+boardColumns+` FROM boards b
		 WHERE b.user_id = ?
		    OR EXISTS (SELECT 1 FROM board_grants g WHERE g.board_id = b.id AND g.user_id = ?)
		 ORDER BY b.updated_at DESC, b.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards for user %s: %w", userID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("error closing rows: %v", err)
		}
	}()

	boards := []models.BoardMeta{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board row: %w", err)
		}
		boards = append(boards, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating board rows: %w", err)
	}
	return boards, nil
}

// ListOwnedTitles returns the titles of every board ownerID owns
func (r *BoardRepo) ListOwnedTitles(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM boards WHERE user_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles for user %s: %w", ownerID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("error closing rows: %v", err)
		}
	}()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// UpdateContent replaces the board's notes wholesale and bumps updated_at.
// Anyone who may read the board may write it.
func (r *BoardRepo) UpdateContent(ctx context.Context, viewerID, id string, notes []models.Note) (time.Time, error) {
	content, err := encodeNotes(notes)
	if err != nil {
		return time.Time{}, err
	}
	updatedAt := r.now()

	res, err := r.db.ExecContext(ctx,
		`UPDATE boards AS b SET content = ?, updated_at = ? WHERE b.id = ? AND `+visibleTo,
		content, toMillis(updatedAt), id, viewerID, viewerID,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update board %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return time.Time{}, fmt.Errorf("failed to check update of board %s: %w", id, err)
	} else if n == 0 {
		return time.Time{}, models.ErrBoardNotFound
	}

	stamped := fromMillis(toMillis(updatedAt))
	sendEvent(r.publisher, id, notes, stamped)
	return stamped, nil
}

// SetShared toggles link sharing. Only the owner may do this.
func (r *BoardRepo) SetShared(ctx context.Context, ownerID, id string, shared bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE boards SET shared = ? WHERE id = ? AND user_id = ?`,
		shared, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sharing for board %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check sharing update for board %s: %w", id, err)
	}
	if n == 0 {
		return models.ErrBoardNotFound
	}
	return nil
}

// HasGrant reports whether userID has joined boardID
func (r *BoardRepo) HasGrant(ctx context.Context, userID, boardID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM board_grants WHERE user_id = ? AND board_id = ?)`,
		userID, boardID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check grant for board %s: %w", boardID, err)
	}
	return exists, nil
}

// AddGrant records that userID joined boardID. Inserting an existing grant is
// a no-op; the primary key keeps the pair unique.
func (r *BoardRepo) AddGrant(ctx context.Context, userID, boardID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO board_grants (user_id, board_id, created_at) VALUES (?, ?, ?)`,
		userID, boardID, toMillis(r.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to add grant for board %s: %w", boardID, err)
	}
	return nil
}

// ListGrants returns every grant on a board
func (r *BoardRepo) ListGrants(ctx context.Context, boardID string) ([]models.AccessGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, board_id, created_at FROM board_grants WHERE board_id = ? ORDER BY created_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants for board %s: %w", boardID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("error closing rows: %v", err)
		}
	}()

	grants := []models.AccessGrant{}
	for rows.Next() {
		var (
			g  models.AccessGrant
			ms int64
		)
		if err := rows.Scan(&g.UserID, &g.BoardID, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		g.CreatedAt = fromMillis(ms)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
