package remote

import (
	"context"
	"time"

	"github.com/thenoetrevino/circles/internal/database"
	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/models"
)

// Client implements Store over the sqlite repository, with change
// notifications coming from the event hub
type Client struct {
	boards *database.BoardRepo
	hub    *events.Hub
	viewer Viewer
}

var _ Store = (*Client)(nil)

// NewClient returns a Client reading as viewer
func NewClient(boards *database.BoardRepo, hub *events.Hub, viewer Viewer) *Client {
	return &Client{boards: boards, hub: hub, viewer: viewer}
}

func (c *Client) viewerID() string {
	if c.viewer == nil {
		return ""
	}
	return c.viewer.CurrentUserID()
}

func (c *Client) ListAccessibleBoards(ctx context.Context, userID string) ([]models.BoardMeta, error) {
	boards, err := c.boards.ListAccessible(ctx, userID)
	if err != nil {
		return nil, models.NewStoreError("list boards", err)
	}
	return boards, nil
}

func (c *Client) GetBoard(ctx context.Context, id string) (*models.BoardMeta, error) {
	b, err := c.boards.Get(ctx, c.viewerID(), id)
	if err != nil {
		return nil, models.NewStoreError("get board", err)
	}
	return b, nil
}

func (c *Client) CreateBoard(ctx context.Context, userID, title string) (*models.BoardMeta, error) {
	b, err := c.boards.Create(ctx, userID, title)
	if err != nil {
		return nil, models.NewStoreError("create board", err)
	}
	return b, nil
}

func (c *Client) CreateBoardWithContent(ctx context.Context, userID, title string, notes []models.Note) (*models.BoardMeta, error) {
	b, err := c.boards.CreateWithContent(ctx, userID, title, notes)
	if err != nil {
		return nil, models.NewStoreError("create board", err)
	}
	return b, nil
}

func (c *Client) UpdateContent(ctx context.Context, id string, notes []models.Note) error {
	if _, err := c.boards.UpdateContent(ctx, c.viewerID(), id, notes); err != nil {
		return models.NewStoreError("update content", err)
	}
	return nil
}

func (c *Client) SetShared(ctx context.Context, id string, shared bool) error {
	if err := c.boards.SetShared(ctx, c.viewerID(), id, shared); err != nil {
		return models.NewStoreError("set shared", err)
	}
	return nil
}

func (c *Client) SubscribeToBoard(id string, onUpdate UpdateFunc) (func(), error) {
	if id == "" {
		return nil, models.NewStoreError("subscribe", models.ErrBoardNotFound)
	}
	unsub := c.hub.Subscribe(id, func(ev events.Event) {
		if ev.Type != events.EventBoardUpdated || ev.BoardID != id {
			return
		}
		updatedAt := ev.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		onUpdate(models.NormalizeNotes(models.CloneNotes(ev.Content)), updatedAt)
	})
	return unsub, nil
}

func (c *Client) ListOwnedTitles(ctx context.Context, userID string) ([]string, error) {
	titles, err := c.boards.ListOwnedTitles(ctx, userID)
	if err != nil {
		return nil, models.NewStoreError("list titles", err)
	}
	return titles, nil
}

func (c *Client) HasGrant(ctx context.Context, userID, boardID string) (bool, error) {
	ok, err := c.boards.HasGrant(ctx, userID, boardID)
	if err != nil {
		return false, models.NewStoreError("check grant", err)
	}
	return ok, nil
}

func (c *Client) AddGrant(ctx context.Context, userID, boardID string) error {
	if err := c.boards.AddGrant(ctx, userID, boardID); err != nil {
		return models.NewStoreError("add grant", err)
	}
	return nil
}
