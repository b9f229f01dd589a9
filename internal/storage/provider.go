// Package storage defines the profile-directory file-system abstraction.
package storage

import "time"

// Entry describes one markdown file directly inside the profile directory.
type Entry struct {
	Name    string
	ModTime time.Time
}

// Provider is the interface for profile-directory file operations.
type Provider interface {
	// List returns every markdown file directly inside the directory.
	// A missing directory yields an empty listing, not an error.
	List() ([]Entry, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically writes content to the named file, creating the
	// directory if needed.
	Write(name string, content []byte) error
}
