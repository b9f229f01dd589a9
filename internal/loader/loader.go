// Package loader reads a profile directory and parses every markdown file
// into the in-memory profile mapping.
package loader

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/parser"
	"github.com/starford/mannaz/internal/storage"
)

// maxConcurrentParses bounds the number of files read and parsed at once.
const maxConcurrentParses = 8

// Load lists the directory behind store and parses each markdown file into
// a Profile keyed by its id (base name without extension).
//
// Files are parsed concurrently — each parse is independent — but results
// are merged in listing order, so id collisions (e.g. a.md vs a.markdown)
// resolve deterministically last-write-wins. A file that cannot be read is
// skipped with a warning; a missing or unlistable directory yields an
// empty mapping.
func Load(store storage.Provider, logger *slog.Logger) map[string]*models.Profile {
	entries, err := store.List()
	if err != nil {
		logger.Warn("loader: list failed", slog.String("error", err.Error()))
		return map[string]*models.Profile{}
	}

	parsed := make([]*models.Profile, len(entries))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentParses)
	for i, e := range entries {
		g.Go(func() error {
			data, readErr := store.Read(e.Name)
			if readErr != nil {
				logger.Warn("loader: read failed",
					slog.String("file", e.Name),
					slog.String("error", readErr.Error()))
				return nil
			}
			mod := e.ModTime
			if mod.IsZero() {
				mod = time.Now()
			}
			parsed[i] = parser.Parse(data, ProfileID(e.Name), mod)
			return nil
		})
	}
	_ = g.Wait()

	profiles := make(map[string]*models.Profile, len(parsed))
	for _, p := range parsed {
		if p == nil {
			continue
		}
		profiles[p.ID] = p
	}
	return profiles
}

// ProfileID derives a profile id from a file name: the base name without
// its extension.
func ProfileID(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
