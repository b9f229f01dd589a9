// Package manager implements the stateful profile registry: it owns the
// current id → Profile mapping, persists the summary index, and notifies
// listeners when the mapping is reloaded.
package manager

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/mannaz/internal/loader"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/notify"
	"github.com/starford/mannaz/internal/storage"
)

// IndexFileName is the persisted summary index, written to the root of
// the managed directory and rewritten wholesale on every load.
const IndexFileName = "metadata.json"

// Manager is the in-memory profile registry.
//
// The mapping is only ever replaced wholesale under the lock, never
// mutated in place, so readers can never observe a half-updated load.
type Manager struct {
	store  storage.Provider
	broker *notify.Broker
	logger *slog.Logger

	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

// New creates a manager over the given profile store. The mapping is
// empty until Initialize is called.
func New(store storage.Provider, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		broker:   notify.NewBroker(),
		logger:   logger,
		profiles: map[string]*models.Profile{},
	}
}

// Initialize loads the directory, replaces the mapping, and persists the
// summary index. A missing directory is a valid empty initial state. An
// index write failure is returned but does not roll back the mapping.
func (m *Manager) Initialize() error {
	return m.writeIndex(m.refresh())
}

// Reload re-runs the directory load, atomically replaces the mapping,
// publishes a profiles-reloaded event carrying the new summaries, and
// rewrites the persisted index. The new summaries are returned alongside
// any index write error; the mapping and the event are never rolled back.
func (m *Manager) Reload() ([]models.ProfileSummary, error) {
	summaries := m.refresh()
	m.broker.Publish(notify.Event{Type: notify.TypeProfilesReloaded, Profiles: summaries})
	return summaries, m.writeIndex(summaries)
}

// List returns summaries for all loaded profiles, sorted by id so the
// order is stable between reloads.
func (m *Manager) List() []models.ProfileSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return summarize(m.profiles)
}

// Get returns the summary for id, or false if no such profile is loaded.
func (m *Manager) Get(id string) (models.ProfileSummary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return models.ProfileSummary{}, false
	}
	return p.Summary(), true
}

// Content returns the unmodified source text for id, or false if no such
// profile is loaded.
func (m *Manager) Content(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return "", false
	}
	return p.RawContent, true
}

// Checklist returns a copy of the profile's checklist, or false if no
// such profile is loaded. A loaded profile with no checklist items yields
// an empty, non-nil slice — callers distinguish "no profile" from
// "profile without items" by the second return value.
func (m *Manager) Checklist(id string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, false
	}
	items := make([]string, len(p.Checklist))
	copy(items, p.Checklist)
	return items, true
}

// Subscribe registers a listener for reload events. The channel is closed
// on Unsubscribe or Shutdown.
func (m *Manager) Subscribe() chan notify.Event {
	return m.broker.Subscribe()
}

// Unsubscribe removes a previously registered listener.
func (m *Manager) Unsubscribe(ch chan notify.Event) {
	m.broker.Unsubscribe(ch)
}

// Shutdown releases held resources and closes all listener channels. The
// manager is not reusable afterwards.
func (m *Manager) Shutdown() {
	m.broker.Close()
}

// refresh loads the directory and swaps in the fresh mapping.
func (m *Manager) refresh() []models.ProfileSummary {
	profiles := loader.Load(m.store, m.logger)

	m.mu.Lock()
	m.profiles = profiles
	m.mu.Unlock()

	m.logger.Info("profiles loaded", slog.Int("count", len(profiles)))
	return summarize(profiles)
}

// writeIndex persists the summary index atomically.
func (m *Manager) writeIndex(summaries []models.ProfileSummary) error {
	idx := models.Index{ProfileCount: len(summaries), Profiles: summaries}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("manager: encode index: %w", err)
	}
	if err := m.store.Write(IndexFileName, data); err != nil {
		return fmt.Errorf("manager: write index: %w", err)
	}
	return nil
}

func summarize(profiles map[string]*models.Profile) []models.ProfileSummary {
	out := make([]models.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
