// Package registry persists the set of installed plugins. Every mutation
// rewrites the whole file through a temp-file-then-rename swap, so an
// interrupted write always leaves the previous valid registry behind.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mplug-cli/mplug/internal/catalog"
)

// ErrNotFound indicates no record exists for the plugin id.
var ErrNotFound = errors.New("plugin not installed")

// State is whether an installed plugin's files are positioned for mpv to
// load them.
type State string

const (
	StateEnabled  State = "enabled"
	StateDisabled State = "disabled"
)

// Record is one installed plugin. Targets are copied from the catalog entry
// at install time so disable/uninstall keep working if the catalog later
// drops or changes the entry.
type Record struct {
	ID           string                  `json:"id"`
	LocalPath    string                  `json:"local_path"`
	InstalledRef string                  `json:"installed_ref"`
	State        State                   `json:"state"`
	InstalledAt  time.Time               `json:"installed_at"`
	Targets      []catalog.InstallTarget `json:"targets"`
}

// registryFile is the persisted format.
type registryFile struct {
	Version   string            `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Plugins   map[string]Record `json:"plugins"`
}

// Registry is a file-backed installed-plugin store. It serializes writes, so
// concurrent per-plugin upgrades can share one handle.
type Registry struct {
	path string

	mu      sync.Mutex
	records map[string]Record
}

// Open loads the registry at path, starting empty when the file does not
// exist yet. A file that exists but cannot be parsed is an error; silently
// discarding state would orphan installed plugins.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path, records: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}
	if file.Plugins != nil {
		r.records = file.Plugins
	}
	return r, nil
}

// Get returns the record for id.
func (r *Registry) Get(id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return rec, nil
}

// List returns all records ordered by id for deterministic display.
func (r *Registry) List() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// Put inserts or replaces the record keyed by its id and persists
// immediately.
func (r *Registry) Put(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, existed := r.records[rec.ID]
	r.records[rec.ID] = rec
	if err := r.save(); err != nil {
		if existed {
			r.records[rec.ID] = previous
		} else {
			delete(r.records, rec.ID)
		}
		return err
	}
	return nil
}

// Remove deletes the record for id and persists immediately.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	delete(r.records, id)
	if err := r.save(); err != nil {
		r.records[id] = previous
		return err
	}
	return nil
}

// SetState flips the enabled/disabled state of an installed plugin.
func (r *Registry) SetState(id string, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	previous := rec
	rec.State = state
	r.records[id] = rec
	if err := r.save(); err != nil {
		r.records[id] = previous
		return err
	}
	return nil
}

// save writes the whole registry to a temp file and renames it over the
// previous one. Callers hold the mutex.
func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	file := registryFile{
		Version:   "1",
		UpdatedAt: time.Now(),
		Plugins:   r.records,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tempFile := r.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}
	if err := os.Rename(tempFile, r.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("save registry file: %w", err)
	}
	return nil
}
