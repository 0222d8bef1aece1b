package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Error types for catalog operations.
var (
	// ErrCatalogUnavailable indicates the remote snapshot could not be
	// fetched or was malformed. The previous snapshot stays in effect.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrNotFound indicates no catalog entry matches the identifier.
	ErrNotFound = errors.New("plugin not found")
)

// MaxCacheAge is how old the on-disk snapshot may grow before a refresh is
// attempted automatically.
const MaxCacheAge = 30 * 24 * time.Hour

// Store holds the current catalog snapshot, backed by a cache file so every
// read works offline with the last good snapshot. Refresh replaces the
// snapshot wholesale; there is no per-entry merging.
type Store struct {
	url       string
	cachePath string
	client    *http.Client

	entries map[string]Entry
}

// NewStore creates a store for the given remote snapshot URL and cache file.
// Call Load before reading.
func NewStore(url, cachePath string, timeout time.Duration) *Store {
	return &Store{
		url:       url,
		cachePath: cachePath,
		client:    &http.Client{Timeout: timeout},
		entries:   make(map[string]Entry),
	}
}

// Load reads the cached snapshot from disk. A missing cache file leaves the
// store empty, which is not an error: the first Refresh populates it.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read catalog cache: %w", err)
	}
	entries, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("parse catalog cache %s: %w", s.cachePath, err)
	}
	s.entries = entries
	return nil
}

// CacheAge returns how long ago the cache file was written. ok is false when
// no cache exists yet.
func (s *Store) CacheAge() (age time.Duration, ok bool) {
	info, err := os.Stat(s.cachePath)
	if err != nil {
		return 0, false
	}
	return time.Since(info.ModTime()), true
}

// Refresh fetches the current snapshot and atomically replaces both the
// in-memory entries and the cache file. On any failure the previous snapshot
// is retained untouched.
func (s *Store) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrCatalogUnavailable, s.url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	entries, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("%w: malformed snapshot: %v", ErrCatalogUnavailable, err)
	}

	if err := s.writeCache(data); err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	s.entries = entries
	return nil
}

// EnsureFresh makes sure a usable snapshot is loaded before resolution or
// search. Without any cache the refresh must succeed; when the cache is
// older than MaxCacheAge a failed refresh degrades to the cached snapshot,
// reporting the failure on warn. A cache younger than MaxCacheAge is served
// as is, without touching the network.
func (s *Store) EnsureFresh(ctx context.Context, warn io.Writer) error {
	age, ok := s.CacheAge()
	if !ok {
		return s.Refresh(ctx)
	}
	if age > MaxCacheAge {
		if err := s.Refresh(ctx); err != nil {
			fmt.Fprintf(warn, "warning: catalog refresh failed, using cached snapshot: %v\n", err)
		}
	}
	return nil
}

// writeCache persists the raw snapshot via write-temp-then-rename so a crash
// mid-write leaves the previous cache intact.
func (s *Store) writeCache(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tempFile := s.cachePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	if err := os.Rename(tempFile, s.cachePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("save catalog cache: %w", err)
	}
	return nil
}

// All returns the current snapshot ordered by id.
func (s *Store) All() []Entry {
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sortByID(entries)
	return entries
}

// FindByID returns the entry with the exact id.
func (s *Store) FindByID(id string) (Entry, error) {
	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return entry, nil
}

// Search matches term case-insensitively against names and descriptions.
// Results are ranked: exact name match, then name-contains, then
// description-contains, ties broken by id so output is deterministic.
func (s *Store) Search(term string) []Entry {
	term = strings.ToLower(term)

	type ranked struct {
		entry Entry
		rank  int
	}
	var matches []ranked
	for _, e := range s.entries {
		name := strings.ToLower(e.Name)
		desc := strings.ToLower(e.Desc)
		switch {
		case name == term:
			matches = append(matches, ranked{e, 0})
		case strings.Contains(name, term):
			matches = append(matches, ranked{e, 1})
		case strings.Contains(desc, term):
			matches = append(matches, ranked{e, 2})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].entry.ID < matches[j].entry.ID
	})

	entries := make([]Entry, len(matches))
	for i, m := range matches {
		entries[i] = m.entry
	}
	return entries
}

func decodeSnapshot(data []byte) (map[string]Entry, error) {
	var upstream map[string]upstreamEntry
	if err := json.Unmarshal(data, &upstream); err != nil {
		return nil, err
	}
	if upstream == nil {
		// A body of "null" decodes to a nil map without error; it must not
		// replace a good snapshot with an empty catalog.
		return nil, errors.New("snapshot is null")
	}
	entries := make(map[string]Entry, len(upstream))
	for id, u := range upstream {
		entries[id] = u.toEntry(id)
	}
	return entries, nil
}
