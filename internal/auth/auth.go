// Package auth signs users in and out and persists the login session.
//
// Having a session is the only switch between local and remote board
// storage, so the rest of the app only asks CurrentSession and listens on
// OnAuthStateChange.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/thenoetrevino/circles/internal/database"
	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/models"
)

// TokenKey is the KV key the session token is stored under
const TokenKey = "wtf-circles-auth-token"

const minPasswordLen = 6

// Session is a signed-in user
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"accessToken"`
}

// userStore is the account backend
type userStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, string, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	UserForSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service is the authentication collaborator
type Service struct {
	users userStore
	kv    localstore.KV
	cost  int

	mu        sync.RWMutex
	session   *Session
	nextID    int
	listeners map[int]func(*Session)
}

// Option configures a Service
type Option func(*Service)

// WithBcryptCost lowers the hashing cost, for tests
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService returns a signed-out service. Call Restore to pick up a
// persisted session.
func NewService(users userStore, kv localstore.KV, opts ...Option) *Service {
	s := &Service{
		users:     users,
		kv:        kv,
		cost:      bcrypt.DefaultCost,
		listeners: make(map[int]func(*Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted token and validates it against the backend.
// A stale or unreadable token is discarded and the service stays signed out.
func (s *Service) Restore(ctx context.Context) error {
	data, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil
	}

	var stored Session
	if err := json.Unmarshal(data, &stored); err != nil || stored.Token == "" {
		slog.Warn("discarding unreadable session token")
		return s.kv.Delete(TokenKey)
	}

	user, err := s.users.UserForSession(ctx, stored.Token)
	if errors.Is(err, database.ErrSessionInvalid) {
		slog.Info("stored session expired", "email", stored.Email)
		return s.kv.Delete(TokenKey)
	}
	if err != nil {
		return fmt.Errorf("failed to validate session: %w", err)
	}

	s.setSession(&Session{UserID: user.ID, Email: user.Email, Token: stored.Token})
	return nil
}

// CurrentSession returns the signed-in session, if any
func (s *Service) CurrentSession() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	cp := *s.session
	return &cp, true
}

// CurrentUserID returns the signed-in user's id, or "" when signed out
func (s *Service) CurrentUserID() string {
	if sess, ok := s.CurrentSession(); ok {
		return sess.UserID
	}
	return ""
}

// SignUp creates an account and signs it in
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, string(hash))
	if errors.Is(err, database.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account created", "user_id", user.ID)
	return s.startSession(ctx, user)
}

// SignIn checks the password and starts a session
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, hash, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *Service) startSession(ctx context.Context, user *models.User) (*Session, error) {
	token, err := s.users.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	sess := &Session{UserID: user.ID, Email: user.Email, Token: token}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.kv.Set(TokenKey, data); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.setSession(sess)
	cp := *sess
	return &cp, nil
}

// SignOut revokes the session. Signing out while signed out is a no-op.
func (s *Service) SignOut(ctx context.Context) error {
	sess, ok := s.CurrentSession()
	if !ok {
		return nil
	}
	if err := s.users.DeleteSession(ctx, sess.Token); err != nil {
		slog.Warn("failed to revoke session", "error", err)
	}
	if err := s.kv.Delete(TokenKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.setSession(nil)
	return nil
}

// OnAuthStateChange calls fn after every sign-in and sign-out with the new
// session (nil when signed out). fn runs on the caller's goroutine.
func (s *Service) OnAuthStateChange(fn func(*Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) setSession(sess *Session) {
	s.mu.Lock()
	s.session = sess
	fns := make([]func(*Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		var cp *Session
		if sess != nil {
			c := *sess
			cp = &c
		}
		fn(cp)
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
