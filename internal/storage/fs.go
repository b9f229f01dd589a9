package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// markdownExts lists the file extensions treated as profile sources.
var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
}

// FS implements Provider backed by a single local directory.
type FS struct {
	root string
}

// NewFS creates a new FS provider rooted at the given directory. The
// directory does not have to exist yet: an absent profile directory is a
// valid initial state.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute directory path the provider is rooted at.
func (f *FS) Root() string {
	return f.root
}

// safeName rejects anything that is not a plain file name inside the root.
func (f *FS) safeName(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("storage: invalid file name: %q", name)
	}
	return filepath.Join(f.root, name), nil
}

// List returns the markdown files directly inside the root, with their
// modification times. Non-files, non-markdown entries, and subdirectories
// are ignored. A missing root yields an empty listing.
func (f *FS) List() ([]Entry, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []Entry
	for _, d := range entries {
		if d.IsDir() || !markdownExts[strings.ToLower(filepath.Ext(d.Name()))] {
			continue
		}
		e := Entry{Name: d.Name()}
		if info, infoErr := d.Info(); infoErr == nil {
			e.ModTime = info.ModTime()
		}
		out = append(out, e)
	}
	return out, nil
}

// Read returns the raw bytes of a file in the profile directory.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safeName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename. The root
// directory is created if it does not exist yet.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.safeName(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(f.root, ".mannaz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
