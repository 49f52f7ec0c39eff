package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/remote"
)

// ============================================================================
// Fake clock
// ============================================================================

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Duration
	fn    func()
	done  bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that came due
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.done:
		case t.at <= c.now:
			t.done = true
			due = append(due, t.fn)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Armed counts timers that have neither fired nor been stopped
func (c *fakeClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// ============================================================================
// Fake board store
// ============================================================================

type saveCall struct {
	id    string
	notes []models.Note
}

type fakeStore struct {
	mode Mode

	mu           sync.Mutex
	boards       map[string]*models.BoardMeta
	saves        []saveCall
	saveErr      error
	gate         chan struct{}
	handlers     map[string]remote.UpdateFunc
	unsubscribed int
	active       string
	created      int

	saved chan saveCall
}

func newFakeStore(mode Mode, boards ...models.BoardMeta) *fakeStore {
	s := &fakeStore{
		mode:     mode,
		boards:   map[string]*models.BoardMeta{},
		handlers: map[string]remote.UpdateFunc{},
		saved:    make(chan saveCall, 64),
	}
	for i := range boards {
		b := boards[i]
		s.boards[b.ID] = &b
	}
	return s
}

func (s *fakeStore) Mode() Mode { return s.mode }

func (s *fakeStore) List(ctx context.Context) ([]models.BoardMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BoardMeta, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Load(ctx context.Context, id string) (*models.BoardMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, models.ErrBoardNotFound
	}
	cp := *b
	cp.Content = models.CloneNotes(b.Content)
	return &cp, nil
}

func (s *fakeStore) Create(ctx context.Context, title string) (*models.BoardMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	id := title
	if id == "" {
		id = fmt.Sprintf("board-%d", s.created)
	}
	b := &models.BoardMeta{ID: id, Title: id, Content: []models.Note{}}
	s.boards[id] = b
	cp := *b
	return &cp, nil
}

func (s *fakeStore) Save(ctx context.Context, id string, notes []models.Note) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	call := saveCall{id: id, notes: models.CloneNotes(notes)}
	s.saves = append(s.saves, call)
	err := s.saveErr
	if err == nil {
		if b, ok := s.boards[id]; ok {
			b.Content = models.CloneNotes(notes)
		}
	}
	s.mu.Unlock()

	s.saved <- call
	return err
}

func (s *fakeStore) Subscribe(id string, fn remote.UpdateFunc) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
		s.unsubscribed++
	}, nil
}

func (s *fakeStore) Activate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	return nil
}

func (s *fakeStore) LastActive(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

func (s *fakeStore) handler(id string) remote.UpdateFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[id]
}

// push delivers a change notification the way a remote store would
func (s *fakeStore) push(t *testing.T, id string, notes []models.Note) {
	t.Helper()
	fn := s.handler(id)
	require.NotNil(t, fn, "no subscription for %s", id)
	fn(models.CloneNotes(notes), time.Now())
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func (s *fakeStore) setGate(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = ch
}

func (s *fakeStore) setSaveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// ============================================================================
// Helpers
// ============================================================================

func newTestController(t *testing.T, store BoardStore) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	c := New(store, WithDebounce(time.Second), WithTimerFunc(clock.AfterFunc))
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func waitSave(t *testing.T, s *fakeStore) saveCall {
	t.Helper()
	select {
	case call := <-s.saved:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a save")
		return saveCall{}
	}
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		got, err := c.State(context.Background())
		return err == nil && got == want
	}, 2*time.Second, 5*time.Millisecond, "controller never reached %s", want)
}

func waitUpdate(t *testing.T, c *Controller, kind UpdateKind) Update {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-c.Updates():
			require.True(t, ok, "updates closed while waiting for %s", kind)
			if u.Kind == kind {
				return u
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s update", kind)
			return Update{}
		}
	}
}

// settle waits until everything already posted to the actor has run
func settle(t *testing.T, c *Controller) {
	t.Helper()
	_, err := c.State(context.Background())
	require.NoError(t, err)
}

func note(id, text string, zone models.Zone) models.Note {
	return models.Note{ID: id, Text: text, Zone: zone, NextActions: []models.Action{}}
}

func texts(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Text
	}
	return out
}
