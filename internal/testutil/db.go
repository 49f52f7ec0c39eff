package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"testing"

	"github.com/thenoetrevino/circles/internal/database"
	"github.com/thenoetrevino/circles/internal/models"
)

// CaptureOutput captures stdout during function execution
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	return <-outC
}

// SetupTestDB creates a migrated in-memory database closed at test end
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateTestUser inserts a user with a throwaway password hash
func CreateTestUser(t *testing.T, repo *database.Repository, email string) *models.User {
	t.Helper()
	u, err := repo.UserRepo.Create(context.Background(), email, "x")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return u
}

// CreateTestBoard inserts a board with the given notes
func CreateTestBoard(t *testing.T, repo *database.Repository, ownerID, title string, notes []models.Note) *models.BoardMeta {
	t.Helper()
	b, err := repo.BoardRepo.CreateWithContent(context.Background(), ownerID, title, notes)
	if err != nil {
		t.Fatalf("Failed to create board %s: %v", title, err)
	}
	return b
}
