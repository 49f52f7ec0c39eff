// Package share builds and resolves board share links of the form
// <base>/board/share/<id>.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/thenoetrevino/circles/internal/models"
)

const pathPrefix = "/board/share/"

// ErrInvalidLink is returned for a link that does not carry a board id
var ErrInvalidLink = errors.New("invalid share link")

// BoardGetter is the one read a link resolves through
type BoardGetter interface {
	GetBoard(ctx context.Context, id string) (*models.BoardMeta, error)
}

// Link returns the shareable URL for a board
func Link(baseURL, boardID string) string {
	return strings.TrimRight(baseURL, "/") + pathPrefix + url.PathEscape(boardID)
}

// ParseLink extracts the board id from a share link. A bare id is accepted
// too.
func ParseLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrInvalidLink
	}
	if !strings.Contains(link, "/") {
		return link, nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	idx := strings.LastIndex(u.Path, pathPrefix)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	id, err := url.PathUnescape(strings.Trim(u.Path[idx+len(pathPrefix):], "/"))
	if err != nil || id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	return id, nil
}

// Resolve loads the board a link points at. Boards not marked shared are
// denied even to their owner, with the same error as a missing board.
func Resolve(ctx context.Context, store BoardGetter, link string) (*models.BoardMeta, error) {
	id, err := ParseLink(link)
	if err != nil {
		return nil, err
	}
	b, err := store.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Shared {
		return nil, models.ErrBoardNotFound
	}
	return b, nil
}
