package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/circles/internal/database"
	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/remote"
	"github.com/thenoetrevino/circles/internal/testutil"
)

type staticViewer struct{ id string }

func (v *staticViewer) CurrentUserID() string { return v.id }

type remoteEnv struct {
	repo   *database.Repository
	client *remote.Client
	viewer *staticViewer
}

func setupRemote(t *testing.T) *remoteEnv {
	t.Helper()
	hub := events.NewHub()
	repo := database.NewRepository(testutil.SetupTestDB(t), database.WithPublisher(hub))
	viewer := &staticViewer{}
	return &remoteEnv{repo: repo, client: remote.NewClient(repo.BoardRepo, hub, viewer), viewer: viewer}
}

// ============================================================================
// Local boards
// ============================================================================

func TestLocalBoards_WritesSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	snap := localstore.NewStore(localstore.NewMemoryKV())
	c, _ := newTestController(t, NewLocalBoards(snap))

	b, err := c.Create(ctx, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", b.ID)
	assert.Equal(t, "Alpha", b.Title)

	_, err = c.AddNote(ctx, "offline idea")
	require.NoError(t, err)
	require.NoError(t, c.Flush(ctx))

	got := snap.Load()
	assert.Equal(t, "Alpha", got.ActiveBoardID)
	require.Len(t, got.Boards["Alpha"], 1)
	assert.Equal(t, "offline idea", got.Boards["Alpha"][0].Text)
	assert.Equal(t, models.ZoneConfused, got.Boards["Alpha"][0].Zone)
}

func TestLocalBoards_CreateNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewLocalBoards(localstore.NewStore(localstore.NewMemoryKV()))

	first, err := store.Create(ctx, "Alpha")
	require.NoError(t, err)
	_, err = store.Create(ctx, "Alpha")
	assert.ErrorIs(t, err, models.ErrBoardExists)
	generated, err := store.Create(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "Alpha", first.ID)
	assert.NotEmpty(t, generated.ID)
	assert.NotEqual(t, "Alpha", generated.ID)

	boards, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 2)
}

func TestLocalBoards_ResumeLastActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	snap := localstore.NewStore(localstore.NewMemoryKV())
	require.NoError(t, snap.Save(localstore.Snapshot{
		ActiveBoardID: "Beta",
		Boards: map[string][]models.Note{
			"Alpha": {},
			"Beta":  {note("n1", "b", models.ZonePartial)},
		},
	}))

	c, _ := newTestController(t, NewLocalBoards(snap))
	b, err := c.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Beta", b.ID)
	require.Len(t, b.Notes, 1)
}

func TestLocalBoards_ActivateUnknown(t *testing.T) {
	t.Parallel()
	store := NewLocalBoards(localstore.NewStore(localstore.NewMemoryKV()))
	assert.ErrorIs(t, store.Activate(context.Background(), "ghost"), models.ErrBoardNotFound)
}

// ============================================================================
// Remote boards
// ============================================================================

func TestRemoteBoards_WriteAndReconcile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := setupRemote(t)
	u := testutil.CreateTestUser(t, env.repo, "u@example.com")
	env.viewer.id = u.ID

	kv := localstore.NewMemoryKV()
	c, _ := newTestController(t, NewRemoteBoards(env.client, u.ID, kv))

	b, err := c.Create(ctx, "Alpha")
	require.NoError(t, err)
	_, err = c.AddNote(ctx, "hosted idea")
	require.NoError(t, err)
	require.NoError(t, c.Flush(ctx))

	stored, err := env.client.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, stored.Content, 1)
	assert.Equal(t, "hosted idea", stored.Content[0].Text)

	u1 := waitUpdate(t, c, UpdateSaved)
	assert.Equal(t, b.ID, u1.BoardID)
	assert.Empty(t, c.Updates(), "own echo does not replace notes")

	// a write from another device
	other := []models.Note{note("n-remote", "from phone", models.ZoneClear)}
	_, err = env.repo.BoardRepo.UpdateContent(ctx, u.ID, b.ID, other)
	require.NoError(t, err)

	replaced := waitUpdate(t, c, UpdateNotesReplaced)
	assert.Equal(t, other, replaced.Notes)
	cur, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, other, cur.Notes)

	// reconciled content is not written back
	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, c.Updates())

	store := NewRemoteBoards(env.client, u.ID, kv)
	last, err := store.LastActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, last)

	otherUser := NewRemoteBoards(env.client, "someone-else", kv)
	last, err = otherUser.LastActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestRemoteBoards_DemoBoardStaysLocal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := setupRemote(t)
	u := testutil.CreateTestUser(t, env.repo, "u@example.com")
	env.viewer.id = u.ID

	c, _ := newTestController(t, NewRemoteBoards(env.client, u.ID, nil))
	b, err := c.OpenDemo(ctx, "Scratch")
	require.NoError(t, err)

	_, err = c.AddNote(ctx, "not persisted")
	require.NoError(t, err)
	require.NoError(t, c.Flush(ctx))

	boards, err := env.client.ListAccessibleBoards(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, boards)

	_, err = NewRemoteBoards(env.client, u.ID, nil).Load(ctx, b.ID)
	assert.ErrorIs(t, err, models.ErrBoardNotFound)
}
