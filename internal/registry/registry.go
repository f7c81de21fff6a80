package registry

import (
	"strings"
	"sync"

	"github.com/digitizer-tools/catsync/internal/models"
)

// Registry is the in-memory store of raw catalog state for one workflow
// instance: the detected identifier, server-sourced entries, manual
// overrides, and whether a reference table has ever been ingested.
// Mutations go through its methods only; subscribers are notified after
// each mutation so callers can recompute the effective view.
type Registry struct {
	mu              sync.RWMutex
	detectedID      string
	serverEntries   map[string]models.CatalogEntry
	manualOverrides map[string]models.CatalogEntry
	csvLoaded       bool
	subscribers     []func()
}

// Snapshot is a consistent copy of the registry's raw state, safe to read
// without further locking. Effective resolution works on snapshots and
// never mutates the registry.
type Snapshot struct {
	CSVLoaded       bool
	DetectedID      string
	ServerEntries   map[string]models.CatalogEntry
	ManualOverrides map[string]models.CatalogEntry
}

func New() *Registry {
	return &Registry{
		serverEntries:   make(map[string]models.CatalogEntry),
		manualOverrides: make(map[string]models.CatalogEntry),
	}
}

// Subscribe registers fn to run after every mutation. Callbacks run on the
// mutating goroutine, outside the registry lock.
func (r *Registry) Subscribe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *Registry) notify() {
	r.mu.RLock()
	subs := make([]func(), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// DetectedID returns the currently detected catalog identifier, or the
// empty string when none is set.
func (r *Registry) DetectedID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.detectedID
}

// SetDetectedID overwrites the detected identifier. An empty id clears it.
func (r *Registry) SetDetectedID(id string) {
	r.mu.Lock()
	r.detectedID = id
	r.mu.Unlock()
	r.notify()
}

// CSVLoaded reports whether any reference-table upload has succeeded. It is
// independent of whether the table produced a usable entry.
func (r *Registry) CSVLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.csvLoaded
}

// MarkCSVLoaded records that a reference-table upload succeeded.
func (r *Registry) MarkCSVLoaded() {
	r.mu.Lock()
	r.csvLoaded = true
	r.mu.Unlock()
	r.notify()
}

// PutServerEntry stores a server-sourced entry keyed by its catalog id.
// A later entry for the same key fully replaces the prior one; entries
// without a catalog id are ignored.
func (r *Registry) PutServerEntry(entry models.CatalogEntry) {
	if entry.CatalogID == "" {
		return
	}
	r.mu.Lock()
	r.serverEntries[entry.CatalogID] = entry
	r.mu.Unlock()
	r.notify()
}

// ServerEntry looks up the server-sourced entry for id.
func (r *Registry) ServerEntry(id string) (models.CatalogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.serverEntries[id]
	return entry, ok
}

// MergeOverride shallow-merges the set fields of entry into the manual
// override stored for its catalog id, creating the override if absent.
// Fields left empty in entry are preserved from the prior override.
func (r *Registry) MergeOverride(entry models.CatalogEntry) {
	id := strings.TrimSpace(entry.CatalogID)
	if id == "" {
		return
	}
	r.mu.Lock()
	merged := r.manualOverrides[id]
	merged.CatalogID = id
	if entry.CatalogTitle != "" {
		merged.CatalogTitle = entry.CatalogTitle
	}
	if entry.CatalogAuthor != "" {
		merged.CatalogAuthor = entry.CatalogAuthor
	}
	if entry.CatalogPublicationYear != nil {
		merged.CatalogPublicationYear = entry.CatalogPublicationYear
	}
	if entry.CatalogPublisher != "" {
		merged.CatalogPublisher = entry.CatalogPublisher
	}
	if entry.CatalogPlace != "" {
		merged.CatalogPlace = entry.CatalogPlace
	}
	if entry.CatalogLanguage != "" {
		merged.CatalogLanguage = entry.CatalogLanguage
	}
	if entry.CatalogKeywords != "" {
		merged.CatalogKeywords = entry.CatalogKeywords
	}
	r.manualOverrides[id] = merged
	r.mu.Unlock()
	r.notify()
}

// Override looks up the manual override stored for id.
func (r *Registry) Override(id string) (models.CatalogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.manualOverrides[id]
	return entry, ok
}

// Snapshot returns a deep copy of the registry's state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	servers := make(map[string]models.CatalogEntry, len(r.serverEntries))
	for k, v := range r.serverEntries {
		servers[k] = v
	}
	overrides := make(map[string]models.CatalogEntry, len(r.manualOverrides))
	for k, v := range r.manualOverrides {
		overrides[k] = v
	}

	return Snapshot{
		CSVLoaded:       r.csvLoaded,
		DetectedID:      r.detectedID,
		ServerEntries:   servers,
		ManualOverrides: overrides,
	}
}

// Reset clears all catalog state, returning the registry to its initial
// condition. Used when the user explicitly clears the workflow.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.detectedID = ""
	r.csvLoaded = false
	r.serverEntries = make(map[string]models.CatalogEntry)
	r.manualOverrides = make(map[string]models.CatalogEntry)
	r.mu.Unlock()
	r.notify()
}
