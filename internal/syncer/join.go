package syncer

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/remote"
)

// JoinShared records that userID has joined a board they reached through a
// shared link. The grant is check-then-insert; the store's key on
// (user, board) absorbs the race.
func JoinShared(ctx context.Context, rs remote.Store, userID, boardID string) (*models.BoardMeta, error) {
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}

	meta, err := rs.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if meta.OwnerID == userID {
		return meta, nil
	}

	has, err := rs.HasGrant(ctx, userID, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to check board access: %w", err)
	}
	if !has {
		if err := rs.AddGrant(ctx, userID, boardID); err != nil {
			return nil, fmt.Errorf("failed to join board: %w", err)
		}
	}
	return meta, nil
}
