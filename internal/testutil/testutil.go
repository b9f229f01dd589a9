// Package testutil provides shared test helpers for setting up profile
// directories.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/mannaz/internal/storage"
)

// TestLogger returns a quiet logger for tests.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestProfileDir creates a temporary profile directory populated with the
// given files and returns it together with a storage provider.
func TestProfileDir(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, StoreAt(t, dir)
}

// StoreAt returns a storage provider rooted at dir, which may not exist.
func StoreAt(t *testing.T, dir string) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store
}
