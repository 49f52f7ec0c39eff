package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/circles/internal/daemon"
	"github.com/thenoetrevino/circles/internal/events"
)

// GetTestSocketPath returns a short, unused socket path. Unix socket paths
// are length limited, so this avoids the deep t.TempDir location.
func GetTestSocketPath(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "circles-t")
	if err != nil {
		t.Fatalf("Failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	return filepath.Join(dir, "d.sock")
}

// SetupTestDaemon starts a daemon on a temporary socket and stops it at test end
func SetupTestDaemon(t *testing.T) (*daemon.Server, string) {
	t.Helper()

	socketPath := GetTestSocketPath(t)

	server, err := daemon.NewServer(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Logf("Warning: daemon did not stop in time")
		}
	})

	return server, socketPath
}

// SetupTestClient returns an event client connected to socketPath
func SetupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()

	client, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}

	return client
}
