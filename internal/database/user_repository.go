package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/circles/internal/models"
)

// UserRepo handles accounts and login sessions
type UserRepo struct {
	db  *sql.DB
	now func() time.Time
}

// Create inserts a user with an already-hashed password
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	email = strings.TrimSpace(email)
	u := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: fromMillis(toMillis(r.now())),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, passwordHash, toMillis(u.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// GetByEmail returns the user and their password hash
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var (
		u    models.User
		hash string
		ms   int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	).Scan(&u.ID, &u.Email, &hash, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = fromMillis(ms)
	return &u, hash, nil
}

// CreateSession stores a new login token for userID
func (r *UserRepo) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, toMillis(r.now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// UserForSession resolves a login token to its user
func (r *UserRepo) UserForSession(ctx context.Context, token string) (*models.User, error) {
	var (
		u  models.User
		ms int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.created_at FROM auth_sessions s
		 JOIN users u ON u.id = s.user_id WHERE s.token = ?`,
		token,
	).Scan(&u.ID, &u.Email, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	u.CreatedAt = fromMillis(ms)
	return &u, nil
}

// DeleteSession revokes a login token. Unknown tokens are ignored.
func (r *UserRepo) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
