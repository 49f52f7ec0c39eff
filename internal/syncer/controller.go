// Package syncer keeps the active board's in-memory notes and its backing
// store in step: edits are debounced into whole-board writes and remote
// change notifications replace the notes when they differ.
//
// A Controller is an actor. API calls, debounce timer fires, write
// completions and remote notifications all become closures on one inbox and
// run in arrival order on the controller goroutine, which is the only
// goroutine that touches session state.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/session"
	"github.com/thenoetrevino/circles/internal/types"
)

const (
	DefaultDebounce     = 1000 * time.Millisecond
	defaultInboxSize    = 64
	defaultUpdateBuffer = 32
	closeTimeout        = 10 * time.Second
)

// Option configures a Controller
type Option func(*Controller)

// WithDebounce sets the write debounce window
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithTimerFunc replaces time.AfterFunc, for deterministic tests
func WithTimerFunc(f TimerFunc) Option {
	return func(c *Controller) {
		if f != nil {
			c.newTimer = f
		}
	}
}

// WithUpdateBuffer sets how many updates may queue before new ones are dropped
func WithUpdateBuffer(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.updateBuffer = n
		}
	}
}

// Controller owns one Board Session and the store it persists to
type Controller struct {
	debounce     time.Duration
	newTimer     TimerFunc
	updateBuffer int

	inbox   chan func()
	updates chan Update
	quit    chan struct{}
	done    chan struct{}

	// ctx scopes store writes; canceled once the actor has stopped
	ctx    context.Context
	cancel context.CancelFunc

	writes    sync.WaitGroup
	closeOnce sync.Once
	closeErr  error

	// actor-owned state below
	store    BoardStore
	storeGen uint64
	sess     *session.Session
	state    State
	dirty    bool

	timer    Timer
	timerGen uint64

	inflightID string
	inflight   []models.Note
	// set when remote content replaced lastSaved while a write was in flight
	reconciledDuringWrite bool

	lastSavedID string
	lastSaved   []models.Note

	unsubscribe func()
	subGen      uint64

	flushWaiters []chan struct{}
}

// New starts a controller writing through store
func New(store BoardStore, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		debounce:     DefaultDebounce,
		newTimer:     afterFunc,
		updateBuffer: defaultUpdateBuffer,
		inbox:        make(chan func(), defaultInboxSize),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		store:        store,
		sess:         session.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updates = make(chan Update, c.updateBuffer)

	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.inbox:
			fn()
		case <-c.quit:
			return
		}
	}
}

// post enqueues fn for the actor. It reports false once the actor has stopped.
func (c *Controller) post(fn func()) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.inbox <- fn:
		return true
	case <-c.done:
		return false
	}
}

// call runs fn on the actor and waits for it to finish
func (c *Controller) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !c.post(func() {
		fn()
		close(finished)
	}) {
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Updates delivers notes replacements, save confirmations and messages.
// The channel is closed by Close.
func (c *Controller) Updates() <-chan Update {
	return c.updates
}

func (c *Controller) emit(u Update) {
	u.At = time.Now()
	select {
	case c.updates <- u:
	default:
		slog.Warn("dropping sync update, buffer full", "kind", u.Kind, "board", u.BoardID)
	}
}

func (c *Controller) report(boardID, msg string, err error) {
	slog.Error(msg, "board", boardID, "error", err)
	c.emit(Update{Kind: UpdateMessage, BoardID: boardID, Message: fmt.Sprintf("%s: %v", msg, err), Err: err})
}

// ============================================================================
// Reads
// ============================================================================

// Mode reports whether the controller writes locally or remotely
func (c *Controller) Mode(ctx context.Context) (Mode, error) {
	var m Mode
	err := c.call(ctx, func() { m = c.store.Mode() })
	return m, err
}

// State reports the write-cycle state
func (c *Controller) State(ctx context.Context) (State, error) {
	var s State
	err := c.call(ctx, func() { s = c.state })
	return s, err
}

// Current returns a copy of the active board. ID is empty when none is open.
func (c *Controller) Current(ctx context.Context) (models.Board, error) {
	var b models.Board
	err := c.call(ctx, func() {
		b = models.Board{
			ID:    c.sess.ActiveID(),
			Title: c.sess.Title(),
			Notes: models.CloneNotes(c.sess.Notes()),
		}
	})
	return b, err
}

// List returns the boards visible in the current store
func (c *Controller) List(ctx context.Context) ([]models.BoardMeta, error) {
	store, _, err := c.currentStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// LastActive returns the board the current store would resume, or ""
func (c *Controller) LastActive(ctx context.Context) (string, error) {
	store, _, err := c.currentStore(ctx)
	if err != nil {
		return "", err
	}
	return store.LastActive(ctx)
}

func (c *Controller) currentStore(ctx context.Context) (BoardStore, uint64, error) {
	var (
		store BoardStore
		gen   uint64
	)
	err := c.call(ctx, func() {
		store = c.store
		gen = c.storeGen
	})
	return store, gen, err
}

// ============================================================================
// Board lifecycle
// ============================================================================

// Open makes id the active board. Pending edits to the previous board are
// flushed first, and in remote mode the board's change feed is subscribed.
func (c *Controller) Open(ctx context.Context, id string) (*models.Board, error) {
	if err := c.Flush(ctx); err != nil {
		return nil, err
	}
	store, gen, err := c.currentStore(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open board %s: %w", id, err)
	}
	return c.activate(ctx, store, gen, meta)
}

// Create adds a board to the current store and opens it. A blank title gets
// a generated name.
func (c *Controller) Create(ctx context.Context, title string) (*models.Board, error) {
	if err := c.Flush(ctx); err != nil {
		return nil, err
	}
	store, gen, err := c.currentStore(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := store.Create(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return c.activate(ctx, store, gen, meta)
}

// OpenDemo opens a scratch board that lives on this client only
func (c *Controller) OpenDemo(ctx context.Context, title string) (*models.Board, error) {
	if err := c.Flush(ctx); err != nil {
		return nil, err
	}
	store, gen, err := c.currentStore(ctx)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = "Demo Board"
	}
	meta := &models.BoardMeta{ID: types.NewDemoBoardID(), Title: title, Content: []models.Note{}}
	return c.activate(ctx, store, gen, meta)
}

// Resume reopens the board that was active last time, falling back to the
// most recent board and then to a fresh one
func (c *Controller) Resume(ctx context.Context) (*models.Board, error) {
	store, _, err := c.currentStore(ctx)
	if err != nil {
		return nil, err
	}

	if id, err := store.LastActive(ctx); err != nil {
		slog.Warn("could not read last active board", "error", err)
	} else if id != "" {
		b, err := c.Open(ctx, id)
		if err == nil {
			return b, nil
		}
		slog.Warn("last active board unavailable", "board", id, "error", err)
	}

	boards, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	if len(boards) > 0 {
		return c.Open(ctx, boards[0].ID)
	}
	return c.Create(ctx, "")
}

func (c *Controller) activate(ctx context.Context, store BoardStore, gen uint64, meta *models.BoardMeta) (*models.Board, error) {
	if err := store.Activate(ctx, meta.ID); err != nil {
		slog.Warn("failed to record active board", "board", meta.ID, "error", err)
	}

	var (
		board    models.Board
		stateErr error
	)
	err := c.call(ctx, func() {
		if gen != c.storeGen {
			stateErr = ErrStoreChanged
			return
		}
		c.dropSubscription()
		c.stopTimer()
		c.state = StateIdle
		c.dirty = false

		content := models.NormalizeNotes(models.CloneNotes(meta.Content))
		c.sess.Activate(meta.ID, meta.Title, content)
		c.lastSavedID = meta.ID
		c.lastSaved = models.CloneNotes(content)

		c.subscribe(meta.ID)

		board = meta.Board()
	})
	if err != nil {
		return nil, err
	}
	if stateErr != nil {
		return nil, stateErr
	}
	slog.Debug("board opened", "board", board.ID, "notes", len(board.Notes), "mode", store.Mode())
	return &board, nil
}

// subscribe runs on the actor. Callbacks carry the generation they were
// registered under so late deliveries after an unsubscribe are dropped.
func (c *Controller) subscribe(id string) {
	c.subGen++
	gen := c.subGen
	unsub, err := c.store.Subscribe(id, func(notes []models.Note, updatedAt time.Time) {
		incoming := models.CloneNotes(notes)
		c.post(func() { c.reconcile(gen, id, incoming) })
	})
	if err != nil {
		c.report(id, "Failed to subscribe to board changes", err)
		return
	}
	c.unsubscribe = unsub
}

func (c *Controller) dropSubscription() {
	c.subGen++
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// SwitchStore flushes pending edits, closes the active board and starts
// writing through store. Called on every auth-state change.
func (c *Controller) SwitchStore(ctx context.Context, store BoardStore) error {
	if err := c.Flush(ctx); err != nil {
		slog.Warn("flush before store switch failed", "error", err)
	}
	return c.call(ctx, func() {
		c.dropSubscription()
		c.stopTimer()
		c.sess.Deactivate()
		c.state = StateIdle
		c.dirty = false
		c.lastSaved, c.lastSavedID = nil, ""
		c.store = store
		c.storeGen++
		c.notifyFlushed()
		c.emit(Update{Kind: UpdateStoreChanged, Message: string(store.Mode())})
	})
}

// ============================================================================
// Edits
// ============================================================================

// AddNote adds a note to the confused zone and returns its id, or "" when
// nothing was added
func (c *Controller) AddNote(ctx context.Context, text string) (string, error) {
	var id string
	err := c.call(ctx, func() {
		if c.apply(func(n []models.Note) []models.Note { return session.AddNote(n, text) }) {
			notes := c.sess.Notes()
			id = notes[len(notes)-1].ID
		}
	})
	return id, err
}

// MoveNote moves a note to zone
func (c *Controller) MoveNote(ctx context.Context, noteID string, zone models.Zone) (bool, error) {
	var changed bool
	err := c.call(ctx, func() {
		changed = c.apply(func(n []models.Note) []models.Note { return session.MoveNote(n, noteID, zone) })
	})
	return changed, err
}

// AddAction appends a follow-up action to a note and returns its id
func (c *Controller) AddAction(ctx context.Context, noteID, text string) (string, error) {
	var id string
	err := c.call(ctx, func() {
		if c.apply(func(n []models.Note) []models.Note { return session.AddAction(n, noteID, text) }) {
			note, _ := session.FindNote(c.sess.Notes(), noteID)
			id = note.NextActions[len(note.NextActions)-1].ID
		}
	})
	return id, err
}

// ToggleAction flips an action's completed flag
func (c *Controller) ToggleAction(ctx context.Context, noteID, actionID string) (bool, error) {
	var changed bool
	err := c.call(ctx, func() {
		changed = c.apply(func(n []models.Note) []models.Note { return session.ToggleAction(n, noteID, actionID) })
	})
	return changed, err
}

// SaveReflection stores five-whys answers on a note
func (c *Controller) SaveReflection(ctx context.Context, noteID string, data models.FiveWhys) (bool, error) {
	var changed bool
	err := c.call(ctx, func() {
		changed = c.apply(func(n []models.Note) []models.Note { return session.SaveReflection(n, noteID, data) })
	})
	return changed, err
}

func (c *Controller) apply(mutate func([]models.Note) []models.Note) bool {
	if !c.sess.Apply(mutate) {
		return false
	}
	c.changed()
	return true
}

func (c *Controller) changed() {
	if c.state == StateWriting {
		c.dirty = true
		return
	}
	c.armTimer()
	c.state = StatePendingWrite
}

// ============================================================================
// Debounced writes
// ============================================================================

func (c *Controller) armTimer() {
	c.stopTimer()
	c.timerGen++
	gen := c.timerGen
	c.timer = c.newTimer(c.debounce, func() {
		c.post(func() { c.onTimer(gen) })
	})
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Controller) onTimer(gen uint64) {
	if gen != c.timerGen || c.state != StatePendingWrite {
		return
	}
	c.timer = nil
	c.startWrite()
}

func (c *Controller) startWrite() {
	id := c.sess.ActiveID()
	notes := models.CloneNotes(c.sess.Notes())
	if id == "" || (id == c.lastSavedID && sameNotes(notes, c.lastSaved)) {
		c.state = StateIdle
		c.notifyFlushed()
		return
	}

	c.state = StateWriting
	c.inflightID = id
	c.inflight = notes
	c.reconciledDuringWrite = false

	store := c.store
	gen := c.storeGen
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		err := store.Save(c.ctx, id, notes)
		c.post(func() { c.onWriteDone(gen, id, notes, err) })
	}()
}

func (c *Controller) onWriteDone(gen uint64, id string, notes []models.Note, err error) {
	c.inflightID, c.inflight = "", nil
	if c.state == StateWriting {
		c.state = StateIdle
	}
	reconciled := c.reconciledDuringWrite
	c.reconciledDuringWrite = false

	switch {
	case err != nil:
		c.report(id, "Failed to save board", err)
	case gen == c.storeGen:
		// The remote moved on while we wrote. Keep its content as the
		// baseline so the echo of this write still gets compared.
		if !reconciled {
			c.lastSavedID = id
			c.lastSaved = notes
		}
		c.emit(Update{Kind: UpdateSaved, BoardID: id})
	}

	if c.dirty && c.state == StateIdle {
		c.dirty = false
		if len(c.flushWaiters) > 0 {
			c.startWrite()
			return
		}
		c.armTimer()
		c.state = StatePendingWrite
		return
	}
	if c.state == StateIdle {
		c.notifyFlushed()
	}
}

func (c *Controller) notifyFlushed() {
	for _, ch := range c.flushWaiters {
		close(ch)
	}
	c.flushWaiters = nil
}

// Flush writes any armed change now and waits until no write is pending or
// in flight
func (c *Controller) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	err := c.call(ctx, func() {
		switch c.state {
		case StateIdle:
			close(flushed)
		case StatePendingWrite:
			c.flushWaiters = append(c.flushWaiters, flushed)
			c.stopTimer()
			c.startWrite()
		case StateWriting:
			c.flushWaiters = append(c.flushWaiters, flushed)
		}
	})
	if err != nil {
		return err
	}

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// ============================================================================
// Reconciliation
// ============================================================================

func (c *Controller) reconcile(gen uint64, id string, incoming []models.Note) {
	if gen != c.subGen || id != c.sess.ActiveID() {
		return
	}
	incoming = models.NormalizeNotes(incoming)

	// our own write coming back, unless another writer landed in between
	if c.inflightID == id && !c.reconciledDuringWrite && sameNotes(incoming, c.inflight) {
		return
	}
	if c.lastSavedID == id && sameNotes(incoming, c.lastSaved) {
		return
	}

	c.lastSavedID = id
	c.lastSaved = models.CloneNotes(incoming)
	if c.inflightID == id {
		c.reconciledDuringWrite = true
	}
	if sameNotes(incoming, c.sess.Notes()) {
		return
	}

	c.sess.Replace(incoming)
	slog.Debug("board replaced by remote change", "board", id, "notes", len(incoming))
	c.emit(Update{Kind: UpdateNotesReplaced, BoardID: id, Notes: models.CloneNotes(incoming)})
}

func sameNotes(a, b []models.Note) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// ============================================================================
// Shutdown
// ============================================================================

// Close flushes pending edits, drops the subscription and stops the actor.
// Safe to call more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()

		c.closeErr = c.Flush(ctx)
		_ = c.call(ctx, func() {
			c.dropSubscription()
			c.stopTimer()
		})

		close(c.quit)
		<-c.done
		c.cancel()
		c.writes.Wait()
		close(c.updates)
	})
	return c.closeErr
}
