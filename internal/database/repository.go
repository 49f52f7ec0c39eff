package database

import (
	"database/sql"
	"time"

	"github.com/thenoetrevino/circles/internal/events"
)

// Repository composes the per-table repositories over one connection
type Repository struct {
	*BoardRepo
	*UserRepo
}

// Option configures a Repository
type Option func(*Repository)

// WithPublisher sends a board_updated event after every content write
func WithPublisher(p events.Publisher) Option {
	return func(r *Repository) { r.BoardRepo.publisher = p }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.BoardRepo.now = now
		r.UserRepo.now = now
	}
}

// NewRepository wraps db
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	r := &Repository{
		BoardRepo: &BoardRepo{db: db, now: time.Now},
		UserRepo:  &UserRepo{db: db, now: time.Now},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
