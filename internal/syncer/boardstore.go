package syncer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/names"
	"github.com/thenoetrevino/circles/internal/remote"
	"github.com/thenoetrevino/circles/internal/types"
)

// Mode names where boards live
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// BoardStore is the persistence capability the controller writes through.
// One implementation is chosen per session and replaced on auth changes.
type BoardStore interface {
	Mode() Mode
	List(ctx context.Context) ([]models.BoardMeta, error)
	Load(ctx context.Context, id string) (*models.BoardMeta, error)
	Create(ctx context.Context, title string) (*models.BoardMeta, error)
	Save(ctx context.Context, id string, notes []models.Note) error
	// Subscribe reports remote changes to a board; local stores never do
	Subscribe(id string, fn remote.UpdateFunc) (unsubscribe func(), err error)
	// Activate records which board is open; LastActive reads it back
	Activate(ctx context.Context, id string) error
	LastActive(ctx context.Context) (string, error)
}

// ============================================================================
// Local boards
// ============================================================================

// localBoards keeps every board in the offline snapshot. Board ids double as
// titles.
type localBoards struct {
	snap *localstore.Store
}

// NewLocalBoards returns a BoardStore over the offline snapshot
func NewLocalBoards(snap *localstore.Store) BoardStore {
	return &localBoards{snap: snap}
}

func (l *localBoards) Mode() Mode { return ModeLocal }

func (l *localBoards) List(ctx context.Context) ([]models.BoardMeta, error) {
	s := l.snap.Load()
	ids := make([]string, 0, len(s.Boards))
	for id := range s.Boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.BoardMeta, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.BoardMeta{ID: id, Title: id, Content: s.Boards[id]})
	}
	return out, nil
}

func (l *localBoards) Load(ctx context.Context, id string) (*models.BoardMeta, error) {
	s := l.snap.Load()
	notes, ok := s.Boards[id]
	if !ok {
		return nil, models.ErrBoardNotFound
	}
	return &models.BoardMeta{ID: id, Title: id, Content: models.NormalizeNotes(notes)}, nil
}

// Create adds an empty board named after title, or a generated name when
// title is blank. A title that is already taken is an error.
func (l *localBoards) Create(ctx context.Context, title string) (*models.BoardMeta, error) {
	s := l.snap.Load()
	if _, taken := s.Boards[title]; title != "" && taken {
		return nil, fmt.Errorf("%w: %s", models.ErrBoardExists, title)
	}
	id := title
	for tries := 0; id == "" || s.Boards[id] != nil; tries++ {
		if tries > 100 {
			return nil, fmt.Errorf("could not find a free board name")
		}
		id = names.BoardName()
	}
	s.Boards[id] = []models.Note{}
	if err := l.snap.Save(s); err != nil {
		return nil, err
	}
	return &models.BoardMeta{ID: id, Title: id, Content: []models.Note{}, UpdatedAt: time.Now()}, nil
}

func (l *localBoards) Save(ctx context.Context, id string, notes []models.Note) error {
	s := l.snap.Load()
	s.Boards[id] = models.CloneNotes(models.NormalizeNotes(notes))
	s.ActiveBoardID = id
	return l.snap.Save(s)
}

func (l *localBoards) Subscribe(id string, fn remote.UpdateFunc) (func(), error) {
	return func() {}, nil
}

func (l *localBoards) LastActive(ctx context.Context) (string, error) {
	return l.snap.Load().ActiveBoardID, nil
}

func (l *localBoards) Activate(ctx context.Context, id string) error {
	s := l.snap.Load()
	if _, ok := s.Boards[id]; !ok && !types.IsDemoBoard(id) {
		return models.ErrBoardNotFound
	}
	if s.ActiveBoardID == id {
		return nil
	}
	s.ActiveBoardID = id
	return l.snap.Save(s)
}

// ============================================================================
// Remote boards
// ============================================================================

// ActiveBoardKey is where remote mode remembers the open board on this device
const ActiveBoardKey = "circles-active-board"

// remoteBoards is the remote store bound to a signed-in user. Demo boards
// never touch it.
type remoteBoards struct {
	store  remote.Store
	userID string
	kv     localstore.KV
}

// NewRemoteBoards returns a BoardStore over the remote store for userID.
// kv, when non-nil, remembers the active board between runs.
func NewRemoteBoards(store remote.Store, userID string, kv localstore.KV) BoardStore {
	return &remoteBoards{store: store, userID: userID, kv: kv}
}

func (r *remoteBoards) Mode() Mode { return ModeRemote }

func (r *remoteBoards) List(ctx context.Context) ([]models.BoardMeta, error) {
	return r.store.ListAccessibleBoards(ctx, r.userID)
}

func (r *remoteBoards) Load(ctx context.Context, id string) (*models.BoardMeta, error) {
	if types.IsDemoBoard(id) {
		return nil, models.ErrBoardNotFound
	}
	return r.store.GetBoard(ctx, id)
}

func (r *remoteBoards) Create(ctx context.Context, title string) (*models.BoardMeta, error) {
	if title == "" {
		title = names.BoardName()
	}
	return r.store.CreateBoard(ctx, r.userID, title)
}

func (r *remoteBoards) Save(ctx context.Context, id string, notes []models.Note) error {
	if types.IsDemoBoard(id) {
		return nil
	}
	return r.store.UpdateContent(ctx, id, notes)
}

func (r *remoteBoards) Subscribe(id string, fn remote.UpdateFunc) (func(), error) {
	if types.IsDemoBoard(id) {
		return func() {}, nil
	}
	return r.store.SubscribeToBoard(id, fn)
}

func (r *remoteBoards) Activate(ctx context.Context, id string) error {
	if r.kv == nil || types.IsDemoBoard(id) {
		return nil
	}
	return r.kv.Set(ActiveBoardKey, []byte(r.userID+"/"+id))
}

// LastActive returns the remembered board when it belongs to the same user
func (r *remoteBoards) LastActive(ctx context.Context) (string, error) {
	if r.kv == nil {
		return "", nil
	}
	data, ok, err := r.kv.Get(ActiveBoardKey)
	if err != nil || !ok {
		return "", err
	}
	user, id, found := strings.Cut(string(data), "/")
	if !found || user != r.userID {
		return "", nil
	}
	return id, nil
}
