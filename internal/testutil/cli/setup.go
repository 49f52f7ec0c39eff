package cli

import (
	"context"
	"database/sql"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/thenoetrevino/circles/internal/app"
	"github.com/thenoetrevino/circles/internal/auth"
	"github.com/thenoetrevino/circles/internal/config"
	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/testutil"
)

// TestShareBaseURL is the share link base used by CLI test apps
const TestShareBaseURL = "https://circles.test"

// SetupCLITest creates an in-memory DB and returns both the DB and App instance
// This function is only for CLI tests and is isolated in a separate package
// to avoid import cycles when service tests import testutil
func SetupCLITest(t *testing.T) (*sql.DB, *app.App) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		DataDir:      t.TempDir(),
		DebounceMs:   config.DefaultDebounceMs,
		ShareBaseURL: TestShareBaseURL,
	}
	// Note: no event publisher - the change channel is the in-process hub
	appInstance, err := app.New(context.Background(), cfg,
		app.WithDB(db),
		app.WithKV(localstore.NewMemoryKV()),
		app.WithAuthOptions(auth.WithBcryptCost(bcrypt.MinCost)),
	)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { _ = appInstance.Close() })

	return db, appInstance
}

// SignUp registers and signs in a user on the test app
func SignUp(t *testing.T, a *app.App, email string) *app.LoginResult {
	t.Helper()
	res, err := a.SignUp(context.Background(), email, "password123", "")
	if err != nil {
		t.Fatalf("Failed to sign up %s: %v", email, err)
	}
	return res
}
