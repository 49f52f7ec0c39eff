// Package app wires the board stores, auth, the change channel and the sync
// controller into one container the CLI drives.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thenoetrevino/circles/internal/auth"
	"github.com/thenoetrevino/circles/internal/config"
	"github.com/thenoetrevino/circles/internal/database"
	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/remote"
	"github.com/thenoetrevino/circles/internal/share"
	"github.com/thenoetrevino/circles/internal/syncer"
)

const authChangeTimeout = 30 * time.Second

// LoginResult is what happened on the sign-in transition
type LoginResult struct {
	Session *auth.Session       `json:"session"`
	Merge   *syncer.MergeReport `json:"merge,omitempty"`
	Joined  *models.BoardMeta   `json:"joined,omitempty"`
	Err     error               `json:"-"`
}

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	db     *sql.DB
	ownsDB bool
	repo   *database.Repository

	// Event system for live updates
	hub         *events.Hub
	eventClient events.EventPublisher
	bridgeStop  context.CancelFunc
	bridgeDone  chan struct{}

	kv    localstore.KV
	Local *localstore.Store

	Auth   *auth.Service
	Remote *remote.Client
	Sync   *syncer.Controller

	unsubAuth func()

	mu           sync.Mutex
	signedIn     bool
	pendingShare string
	lastLogin    *LoginResult
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	ac := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(ac)
	}

	a := &App{cfg: cfg, logger: ac.logger, eventClient: ac.eventClient}

	a.kv = ac.kv
	if a.kv == nil {
		fileKV, err := localstore.NewFileKV(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		a.kv = fileKV
	}
	a.Local = localstore.NewStore(a.kv)

	a.db = ac.db
	if a.db == nil {
		db, err := database.InitDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
		a.ownsDB = true
	}

	a.hub = events.NewHub()
	a.repo = database.NewRepository(a.db, database.WithPublisher(events.NewRelay(a.hub, a.eventClient)))

	a.Auth = auth.NewService(a.repo.UserRepo, a.kv, ac.authOpts...)
	if err := a.Auth.Restore(ctx); err != nil {
		a.logger.Warn("could not restore session", "error", err)
	}
	a.Remote = remote.NewClient(a.repo.BoardRepo, a.hub, a.Auth)

	sess, ok := a.Auth.CurrentSession()
	a.signedIn = ok
	syncOpts := append([]syncer.Option{syncer.WithDebounce(cfg.Debounce())}, ac.syncOpts...)
	a.Sync = syncer.New(a.storeFor(sess), syncOpts...)
	a.unsubAuth = a.Auth.OnAuthStateChange(a.onAuthChange)

	if a.eventClient != nil {
		a.startBridge()
	}
	return a, nil
}

func (a *App) storeFor(sess *auth.Session) syncer.BoardStore {
	if sess == nil {
		return syncer.NewLocalBoards(a.Local)
	}
	return syncer.NewRemoteBoards(a.Remote, sess.UserID, a.kv)
}

func (a *App) startBridge() {
	ctx, cancel := context.WithCancel(context.Background())
	a.bridgeStop = cancel
	a.bridgeDone = make(chan struct{})
	go func() {
		defer close(a.bridgeDone)
		if err := events.Bridge(ctx, a.eventClient, a.hub); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("daemon bridge stopped", "error", err)
		}
	}()
}

// onAuthChange swaps the board store on every auth transition. Going from
// signed out to signed in also merges the offline boards, or joins the
// shared board the user arrived through.
func (a *App) onAuthChange(sess *auth.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), authChangeTimeout)
	defer cancel()

	a.mu.Lock()
	wasSignedIn := a.signedIn
	a.signedIn = sess != nil
	joinID := a.pendingShare
	a.pendingShare = ""
	a.mu.Unlock()

	if err := a.Sync.SwitchStore(ctx, a.storeFor(sess)); err != nil {
		a.logger.Error("failed to switch board store", "error", err)
	}
	if sess == nil || wasSignedIn {
		return
	}

	result := &LoginResult{Session: sess}
	if joinID != "" {
		result.Joined, result.Err = syncer.JoinShared(ctx, a.Remote, sess.UserID, joinID)
	} else {
		result.Merge, result.Err = syncer.MergeLocal(ctx, a.Local, a.Remote, sess.UserID)
	}
	if result.Err != nil {
		a.logger.Error("sign-in follow-up failed", "user", sess.UserID, "error", result.Err)
	}

	a.mu.Lock()
	a.lastLogin = result
	a.mu.Unlock()
}

// SignIn signs in and returns what the transition did. joinBoardID, when
// set, is the shared board the user is viewing; it is joined instead of
// merging the offline boards.
func (a *App) SignIn(ctx context.Context, email, password, joinBoardID string) (*LoginResult, error) {
	a.setPendingShare(joinBoardID)
	if _, err := a.Auth.SignIn(ctx, email, password); err != nil {
		a.setPendingShare("")
		return nil, err
	}
	return a.takeLogin(), nil
}

// SignUp creates an account and signs it in, with the same follow-up as SignIn
func (a *App) SignUp(ctx context.Context, email, password, joinBoardID string) (*LoginResult, error) {
	a.setPendingShare(joinBoardID)
	if _, err := a.Auth.SignUp(ctx, email, password); err != nil {
		a.setPendingShare("")
		return nil, err
	}
	return a.takeLogin(), nil
}

func (a *App) setPendingShare(id string) {
	a.mu.Lock()
	a.pendingShare = id
	a.mu.Unlock()
}

func (a *App) takeLogin() *LoginResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.lastLogin
	a.lastLogin = nil
	if r == nil {
		sess, _ := a.Auth.CurrentSession()
		r = &LoginResult{Session: sess}
	}
	return r
}

// OpenShared resolves a share link. Signed-in users join the board and it
// becomes the active board; anonymous viewers get a read-only copy.
func (a *App) OpenShared(ctx context.Context, link string) (*models.BoardMeta, bool, error) {
	meta, err := share.Resolve(ctx, a.Remote, link)
	if err != nil {
		return nil, false, err
	}

	sess, ok := a.Auth.CurrentSession()
	if !ok {
		return meta, false, nil
	}
	if _, err := syncer.JoinShared(ctx, a.Remote, sess.UserID, meta.ID); err != nil {
		return nil, false, err
	}
	if _, err := a.Sync.Open(ctx, meta.ID); err != nil {
		return nil, false, err
	}
	return meta, true, nil
}

// ShareLink returns the link for a board
func (a *App) ShareLink(boardID string) string {
	return share.Link(a.cfg.ShareBaseURL, boardID)
}

// WatchLocal signals whenever another process rewrites the offline snapshot.
// Only file-backed stores can be watched.
func (a *App) WatchLocal(ctx context.Context) (<-chan struct{}, error) {
	w, ok := a.kv.(interface {
		Watch(ctx context.Context, key string) (<-chan struct{}, error)
	})
	if !ok {
		return nil, fmt.Errorf("local store does not support watching")
	}
	return w.Watch(ctx, localstore.SnapshotKey)
}

// Config returns the configuration the app was built with
func (a *App) Config() *config.Config {
	return a.cfg
}

// Repo returns the underlying repository for direct database access.
func (a *App) Repo() *database.Repository {
	return a.repo
}

// Hub returns the in-process change notification hub
func (a *App) Hub() *events.Hub {
	return a.hub
}

// Close flushes pending edits and releases everything the app opened.
func (a *App) Close() error {
	a.unsubAuth()
	err := a.Sync.Close()

	if a.bridgeStop != nil {
		a.bridgeStop()
	}
	if a.eventClient != nil {
		if cerr := a.eventClient.Close(); cerr != nil {
			a.logger.Warn("error closing event client", "error", cerr)
		}
	}
	if a.bridgeDone != nil {
		<-a.bridgeDone
	}

	if a.ownsDB {
		if cerr := a.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
