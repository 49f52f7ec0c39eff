package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/remote"
	"github.com/thenoetrevino/circles/internal/types"
)

// SkipReason says why a local board was not copied to the remote store
type SkipReason string

const (
	SkipTitleExists SkipReason = "title already exists remotely"
	SkipDemoBoard   SkipReason = "demo board"
)

// SkippedBoard is a local board left out of a merge. Notes are kept so the
// caller can show or re-create them.
type SkippedBoard struct {
	Title  string        `json:"title"`
	Reason SkipReason    `json:"reason"`
	Notes  []models.Note `json:"notes"`
}

// MergeReport lists what MergeLocal did
type MergeReport struct {
	Created []models.BoardMeta `json:"created"`
	Skipped []SkippedBoard     `json:"skipped"`
}

// MergeLocal copies the offline boards into the remote store for a user who
// just signed in. Boards whose title the user already owns remotely are
// skipped and reported, never renamed or overwritten. The local snapshot is
// cleared once every non-skipped board was created; if any create fails it
// is kept and the error returned.
func MergeLocal(ctx context.Context, local *localstore.Store, rs remote.Store, userID string) (*MergeReport, error) {
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}

	report := &MergeReport{Created: []models.BoardMeta{}, Skipped: []SkippedBoard{}}
	snap := local.Load()
	if snap.Empty() {
		return report, nil
	}

	titles, err := rs.ListOwnedTitles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote boards: %w", err)
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	ids := make([]string, 0, len(snap.Boards))
	for id := range snap.Boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, title := range ids {
		notes := snap.Boards[title]
		switch {
		case types.IsDemoBoard(title):
			report.Skipped = append(report.Skipped, SkippedBoard{Title: title, Reason: SkipDemoBoard, Notes: notes})
			continue
		case existing[title]:
			report.Skipped = append(report.Skipped, SkippedBoard{Title: title, Reason: SkipTitleExists, Notes: notes})
			continue
		}

		meta, err := rs.CreateBoardWithContent(ctx, userID, title, notes)
		if err != nil {
			errs = append(errs, fmt.Errorf("board %q: %w", title, err))
			continue
		}
		existing[title] = true
		report.Created = append(report.Created, *meta)
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("failed to merge local boards: %w", errors.Join(errs...))
	}
	if err := local.Clear(); err != nil {
		return report, err
	}

	slog.Info("merged local boards", "user", userID, "created", len(report.Created), "skipped", len(report.Skipped))
	return report, nil
}
