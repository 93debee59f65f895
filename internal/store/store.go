package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateFileName is the fixed name of the durable document inside a data
// directory.
const StateFileName = "daybook-state.json"

// PersistError reports that a mutation was applied in memory but could not
// be written to disk. The running process keeps serving the new state; the
// update is lost only if the process restarts before a later persist
// succeeds.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist state to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Store is the local durable store. Construct one per process with Open and
// inject it where needed; tests create isolated instances in temp dirs.
type Store struct {
	path   string
	logger *log.Logger

	lock fifoLock // write serializer

	mu     sync.RWMutex // guards cached
	cached *State
}

// Open creates a store backed by the JSON document at path. The file is not
// read until the first Load or Update. If logger is nil, a default logger
// writing to stderr is used.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the location of the durable document.
func (s *Store) Path() string { return s.path }

// Load returns a deep copy of the current state. The first call reads the
// document from disk; a missing or corrupt document degrades to the default
// empty state. Load never fails.
func (s *Store) Load() *State {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		s.cached = s.readFromDisk()
	}
	return s.cached.Clone()
}

// Update applies fn to a deep copy of the current state under the write
// serializer, stamps UpdatedAt, persists the new image, and swaps it into
// the in-memory cache before releasing the lock.
//
// The returned state is a private copy reflecting this update and every
// update ordered before it. A non-nil error is always a *PersistError: the
// mutation is live in memory regardless, so callers that only need
// this-process consistency may ignore it.
func (s *Store) Update(fn func(*State)) (*State, error) {
	s.lock.acquire()
	defer s.lock.release()

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached == nil {
		cached = s.readFromDisk()
	}

	next := cached.Clone()
	fn(next)
	now := time.Now().UTC()
	next.UpdatedAt = &now

	persistErr := s.persist(next)
	if persistErr != nil {
		s.logger.Printf("WARNING: %v", persistErr)
	}

	s.mu.Lock()
	s.cached = next
	s.mu.Unlock()

	if persistErr != nil {
		return next.Clone(), persistErr
	}
	return next.Clone(), nil
}

// readFromDisk loads and normalizes the document, falling back to the
// default empty state on any failure.
func (s *Store) readFromDisk() *State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("WARNING: failed to read state file %s: %v (starting empty)", s.path, err)
		}
		return defaultState()
	}

	state := defaultState()
	if err := json.Unmarshal(data, state); err != nil {
		s.logger.Printf("WARNING: corrupt state file %s: %v (starting empty)", s.path, err)
		return defaultState()
	}
	state.normalize()
	return state
}

// persist writes the state atomically: marshal, write a temp file in the
// same directory, fsync, then rename over the document.
func (s *Store) persist(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".daybook-state-*.tmp")
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	return nil
}
