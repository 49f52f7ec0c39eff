package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/circles/internal/models"
)

func emptyBoard(id string) models.BoardMeta {
	return models.BoardMeta{ID: id, Title: id, Content: []models.Note{}}
}

// ============================================================================
// Debounce
// ============================================================================

func TestController_DebounceCoalescesEdits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeLocal, emptyBoard("b1"))
	c, clock := newTestController(t, store)

	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	_, err = c.AddNote(ctx, "first") // t=0
	require.NoError(t, err)
	clock.Advance(200 * time.Millisecond)
	_, err = c.AddNote(ctx, "second") // t=200
	require.NoError(t, err)
	clock.Advance(200 * time.Millisecond)
	_, err = c.AddNote(ctx, "third") // t=400
	require.NoError(t, err)

	clock.Advance(999 * time.Millisecond)
	settle(t, c)
	assert.Equal(t, 0, store.saveCount(), "window still open")
	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePendingWrite, state)

	clock.Advance(time.Millisecond)
	call := waitSave(t, store)
	assert.Equal(t, "b1", call.id)
	assert.Equal(t, []string{"first", "second", "third"}, texts(call.notes))

	waitState(t, c, StateIdle)
	assert.Equal(t, 1, store.saveCount())
	assert.Equal(t, 0, clock.Armed())
}

func TestController_EditWhileWritingRearmsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote, emptyBoard("b1"))
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	gate := make(chan struct{})
	store.setGate(gate)

	_, err = c.AddNote(ctx, "a")
	require.NoError(t, err)
	clock.Advance(time.Second)
	waitState(t, c, StateWriting)

	_, err = c.AddNote(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, clock.Armed(), "no timer while a write is in flight")

	close(gate)
	first := waitSave(t, store)
	assert.Equal(t, []string{"a"}, texts(first.notes))

	waitState(t, c, StatePendingWrite)
	clock.Advance(time.Second)
	second := waitSave(t, store)
	assert.Equal(t, []string{"a", "b"}, texts(second.notes))
	waitState(t, c, StateIdle)
}

func TestController_UnchangedContentIsNotWritten(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeLocal, models.BoardMeta{
		ID: "b1", Title: "b1",
		Content: []models.Note{note("n1", "idea", models.ZoneConfused)},
	})
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	moved, err := c.MoveNote(ctx, "n1", models.ZoneClear)
	require.NoError(t, err)
	require.True(t, moved)
	moved, err = c.MoveNote(ctx, "n1", models.ZoneConfused)
	require.NoError(t, err)
	require.True(t, moved)

	clock.Advance(time.Second)
	waitState(t, c, StateIdle)
	assert.Equal(t, 0, store.saveCount())
}

func TestController_NoopEditsDoNotArmTimer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeLocal, emptyBoard("b1"))
	c, clock := newTestController(t, store)

	id, err := c.AddNote(ctx, "before any board is open")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 0, clock.Armed())

	_, err = c.Open(ctx, "b1")
	require.NoError(t, err)

	id, err = c.AddNote(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, id)
	moved, err := c.MoveNote(ctx, "missing", models.ZoneClear)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 0, clock.Armed())
}

func TestController_FailedWriteIsReportedNotRetried(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote, emptyBoard("b1"))
	store.setSaveErr(errors.New("network down"))
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	_, err = c.AddNote(ctx, "keep me")
	require.NoError(t, err)
	clock.Advance(time.Second)

	u := waitUpdate(t, c, UpdateMessage)
	assert.Equal(t, "b1", u.BoardID)
	assert.Contains(t, u.Message, "network down")
	assert.Error(t, u.Err)

	waitState(t, c, StateIdle)
	clock.Advance(10 * time.Second)
	settle(t, c)
	assert.Equal(t, 1, store.saveCount())

	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep me"}, texts(board.Notes), "in-memory state survives the failure")
}

func TestController_FlushWritesImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeLocal, emptyBoard("b1"))
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	noteID, err := c.AddNote(ctx, "idea")
	require.NoError(t, err)
	actionID, err := c.AddAction(ctx, noteID, "ask someone")
	require.NoError(t, err)
	require.NotEmpty(t, actionID)

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, 1, store.saveCount())
	assert.Equal(t, 0, clock.Armed())

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, 1, store.saveCount(), "nothing pending")

	b, err := store.Load(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, b.Content, 1)
	assert.Equal(t, actionID, b.Content[0].NextActions[0].ID)
}

// ============================================================================
// Reconciliation
// ============================================================================

func TestController_ReconcileReplacesDifferentContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n1 := note("n1", "one", models.ZoneConfused)
	store := newFakeStore(ModeRemote, models.BoardMeta{ID: "b1", Title: "b1", Content: []models.Note{n1}})
	c, _ := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	incoming := []models.Note{n1, note("n2", "two", models.ZoneClear)}
	store.push(t, "b1", incoming)

	u := waitUpdate(t, c, UpdateNotesReplaced)
	assert.Equal(t, "b1", u.BoardID)
	if diff := cmp.Diff(incoming, u.Notes); diff != "" {
		t.Errorf("replaced notes mismatch (-want +got):\n%s", diff)
	}

	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, incoming, board.Notes)
}

func TestController_ReconcileSkipsIdenticalContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n1 := note("n1", "one", models.ZoneConfused)
	store := newFakeStore(ModeRemote, models.BoardMeta{ID: "b1", Title: "b1", Content: []models.Note{n1}})
	c, _ := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	id, err := c.AddNote(ctx, "two")
	require.NoError(t, err)
	before, err := c.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, id, before.Notes[1].ID)

	// another client wrote exactly what we hold in memory
	store.push(t, "b1", before.Notes)
	settle(t, c)

	assert.Empty(t, c.Updates(), "no replacement for identical content")
	after, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Notes, after.Notes)
}

func TestController_OwnEchoDuringLaterEditIsDropped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote, emptyBoard("b1"))
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	gate := make(chan struct{})
	store.setGate(gate)
	_, err = c.AddNote(ctx, "a")
	require.NoError(t, err)
	clock.Advance(time.Second)
	waitState(t, c, StateWriting)

	written, err := c.Current(ctx)
	require.NoError(t, err)
	_, err = c.AddNote(ctx, "b")
	require.NoError(t, err)

	store.push(t, "b1", written.Notes)
	settle(t, c)

	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts(board.Notes))

	close(gate)
	waitSave(t, store)
}

func TestController_EchoAfterRemoteChangeDuringWriteIsApplied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote, emptyBoard("b1"))
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	gate := make(chan struct{})
	store.setGate(gate)
	_, err = c.AddNote(ctx, "mine")
	require.NoError(t, err)
	clock.Advance(time.Second)
	waitState(t, c, StateWriting)

	mine, err := c.Current(ctx)
	require.NoError(t, err)

	// another client's write lands before ours
	store.push(t, "b1", []models.Note{note("t1", "theirs", models.ZoneConfused)})
	settle(t, c)

	close(gate)
	waitSave(t, store)
	waitState(t, c, StateIdle)

	// our write is now the remote's content
	store.push(t, "b1", mine.Notes)
	settle(t, c)

	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, texts(board.Notes))
	assert.Equal(t, 0, clock.Armed())
	assert.Equal(t, 1, store.saveCount())
}

func TestController_EchoBeforeWriteCompletesAfterRemoteChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote, emptyBoard("b1"))
	c, clock := newTestController(t, store)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)

	gate := make(chan struct{})
	store.setGate(gate)
	_, err = c.AddNote(ctx, "mine")
	require.NoError(t, err)
	clock.Advance(time.Second)
	waitState(t, c, StateWriting)

	mine, err := c.Current(ctx)
	require.NoError(t, err)

	store.push(t, "b1", []models.Note{note("t1", "theirs", models.ZoneConfused)})
	store.push(t, "b1", mine.Notes)
	settle(t, c)

	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, texts(board.Notes))

	close(gate)
	waitSave(t, store)
	waitState(t, c, StateIdle)

	board, err = c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, texts(board.Notes))
}

func TestController_NotificationAfterUnsubscribeIsIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote, emptyBoard("b1"), emptyBoard("b2"))
	c, _ := newTestController(t, store)

	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)
	stale := store.handler("b1")
	require.NotNil(t, stale)

	_, err = c.Open(ctx, "b2")
	require.NoError(t, err)
	store.mu.Lock()
	assert.Equal(t, 1, store.unsubscribed)
	store.mu.Unlock()

	stale([]models.Note{note("x", "late", models.ZoneClear)}, time.Now())
	settle(t, c)

	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b2", board.ID)
	assert.Empty(t, board.Notes)
	assert.Empty(t, c.Updates())
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestController_OpenMissingBoard(t *testing.T) {
	t.Parallel()
	store := newFakeStore(ModeLocal)
	c, _ := newTestController(t, store)

	_, err := c.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrBoardNotFound)
}

func TestController_OpenFlushesPreviousBoard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeLocal, emptyBoard("b1"), emptyBoard("b2"))
	c, _ := newTestController(t, store)

	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)
	_, err = c.AddNote(ctx, "on b1")
	require.NoError(t, err)

	b, err := c.Open(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, "b2", b.ID)

	call := waitSave(t, store)
	assert.Equal(t, "b1", call.id)
	last, err := store.LastActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b2", last)
}

func TestController_ResumeFallsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore(ModeLocal, emptyBoard("a"), emptyBoard("b"))
	require.NoError(t, store.Activate(ctx, "b"))
	c, _ := newTestController(t, store)
	b, err := c.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", b.ID)

	empty := newFakeStore(ModeLocal)
	c2, _ := newTestController(t, empty)
	b, err = c2.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "board-1", b.ID, "creates a board when none exist")
}

func TestController_SwitchStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local := newFakeStore(ModeLocal, emptyBoard("b1"))
	c, _ := newTestController(t, local)
	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)
	_, err = c.AddNote(ctx, "offline idea")
	require.NoError(t, err)

	hosted := newFakeStore(ModeRemote, emptyBoard("r1"))
	require.NoError(t, c.SwitchStore(ctx, hosted))

	assert.Equal(t, 1, local.saveCount(), "pending edit flushed to the old store")
	u := waitUpdate(t, c, UpdateStoreChanged)
	assert.Equal(t, string(ModeRemote), u.Message)

	mode, err := c.Mode(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, mode)
	board, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, board.ID)

	boards, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "r1", boards[0].ID)
}

func TestController_StaleActivationAfterSwitchFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	local := newFakeStore(ModeLocal, emptyBoard("b1"))
	c, _ := newTestController(t, local)

	store, gen, err := c.currentStore(ctx)
	require.NoError(t, err)
	meta, err := store.Load(ctx, "b1")
	require.NoError(t, err)

	require.NoError(t, c.SwitchStore(ctx, newFakeStore(ModeRemote)))
	_, err = c.activate(ctx, store, gen, meta)
	assert.ErrorIs(t, err, ErrStoreChanged)
}

func TestController_OpenDemo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeRemote)
	c, _ := newTestController(t, store)

	b, err := c.OpenDemo(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Demo Board", b.Title)
	assert.Contains(t, b.ID, "demo-board-")
}

func TestController_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore(ModeLocal, emptyBoard("b1"))
	clock := &fakeClock{}
	c := New(store, WithTimerFunc(clock.AfterFunc))

	_, err := c.Open(ctx, "b1")
	require.NoError(t, err)
	_, err = c.AddNote(ctx, "flushed on close")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, store.saveCount())

	_, err = c.AddNote(ctx, "too late")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Flush(ctx), ErrClosed)

	for range c.Updates() {
	}
}

func TestStateAndKindStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending_write", StatePendingWrite.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "notes_replaced", UpdateNotesReplaced.String())
	assert.Equal(t, "unknown", UpdateKind(0).String())
}
