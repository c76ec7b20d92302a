package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// storeEntry is the last-seen state of one snapshot file. Raw bytes are
// kept rather than decoded values so a reload diffs against exactly what
// was on disk, with no serialization round-trip drift.
type storeEntry struct {
	ModTime time.Time `json:"mtime"`
	Raw     []byte    `json:"raw"`
}

// storeState is the persistent format.
type storeState struct {
	Version int                    `json:"version"`
	Entries map[string]*storeEntry `json:"entries"` // key is the snapshot file path
}

// Store remembers the last seen content of snapshot files so changes can
// be diffed across process restarts. State lives in
// {dir}/.cachediff/state.json.
type Store struct {
	Path string

	mu    sync.RWMutex
	state *storeState
	dirty bool
}

// NewStore initializes a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		Path: filepath.Join(dir, ".cachediff", "state.json"),
		state: &storeState{
			Version: 1,
			Entries: make(map[string]*storeEntry),
		},
	}
}

// Load reads the store from disk. A missing file is not an error, and a
// corrupted one is treated as empty so the store self-heals.
func (st *Store) Load() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.Path)
	if os.IsNotExist(err) {
		return nil // Start fresh
	}
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}

	if err := json.Unmarshal(data, st.state); err != nil {
		st.state.Entries = make(map[string]*storeEntry)
		return nil
	}
	if st.state.Entries == nil {
		st.state.Entries = make(map[string]*storeEntry)
	}
	st.dirty = false
	return nil
}

// Save persists the store if anything changed since the last Save.
func (st *Store) Save() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.dirty {
		return nil
	}
	data, err := json.MarshalIndent(st.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(st.Path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(st.Path, data, 0644); err != nil {
		return err
	}
	st.dirty = false
	return nil
}

// Get returns the remembered snapshot for path, or a miss when nothing was
// recorded or the recorded mtime no longer matches.
func (st *Store) Get(path string, mtime time.Time) (*Snapshot, bool) {
	st.mu.RLock()
	entry, ok := st.state.Entries[path]
	st.mu.RUnlock()

	if !ok || !entry.ModTime.Equal(mtime) {
		return nil, false
	}
	s, err := Parse(entry.Raw)
	if err != nil {
		return nil, false
	}
	s.Path = path
	return s, true
}

// Last returns the remembered snapshot for path regardless of mtime. Used
// to diff a fresh read against whatever was seen before.
func (st *Store) Last(path string) (*Snapshot, bool) {
	st.mu.RLock()
	entry, ok := st.state.Entries[path]
	st.mu.RUnlock()

	if !ok {
		return nil, false
	}
	s, err := Parse(entry.Raw)
	if err != nil {
		return nil, false
	}
	s.Path = path
	return s, true
}

// Set records the current content of a snapshot file.
func (st *Store) Set(path string, mtime time.Time, raw []byte) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.Entries[path] = &storeEntry{ModTime: mtime, Raw: raw}
	st.dirty = true
}

// Delete forgets a snapshot file, e.g. after it is removed from disk.
func (st *Store) Delete(path string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.state.Entries[path]; ok {
		delete(st.state.Entries, path)
		st.dirty = true
	}
}
