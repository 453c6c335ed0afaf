// Package prefs provides a small file-backed key-value store for per-user
// client preferences such as the onboarding flag and the selected mode.
// Reads are served from memory; writes are flushed to disk asynchronously.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Well-known preference keys
const (
	KeyHasCompletedOnboarding = "has_completed_onboarding"
	KeyAccessToken            = "access_token"
	KeyUserMode               = "user_mode"
)

// Store is a concurrency-safe key-value store persisted as one JSON file
type Store struct {
	path   string
	logger zerolog.Logger

	mu     sync.RWMutex
	values map[string]string
	closed bool

	dirty chan struct{}
	done  chan struct{}
}

// NewStore loads (or creates) the store at path and starts the flush worker
func NewStore(path string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		values: make(map[string]string),
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("error parsing preferences file: %w", err)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating preferences directory: %w", err)
		}
	default:
		return nil, fmt.Errorf("error reading preferences file: %w", err)
	}

	go s.flushLoop()
	return s, nil
}

// Get returns the value for key and whether it was present
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetBool reads key as a boolean, false when absent or malformed
func (s *Store) GetBool(key string) bool {
	v, ok := s.Get(key)
	return ok && v == "true"
}

// Set stores key=value and schedules a flush
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.values[key] = value
	s.markDirty()
}

// SetBool stores a boolean under key
func (s *Store) SetBool(key string, value bool) {
	if value {
		s.Set(key, "true")
	} else {
		s.Set(key, "false")
	}
}

// Delete removes key and schedules a flush
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	delete(s.values, key)
	s.markDirty()
}

// Close stops the flush worker after writing any pending changes
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.dirty)
	<-s.done
	return s.flush()
}

// markDirty must be called with mu held: writers only signal while the store
// is open, and Close only closes the channel once closed is set under the
// same lock, so a send can never race the close.
func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Store) flushLoop() {
	defer close(s.done)
	for range s.dirty {
		if err := s.flush(); err != nil {
			s.logger.Error().Err(err).Str("path", s.path).Msg("Failed to flush preferences")
		}
	}
}

// flush writes the snapshot atomically via a temp file rename
func (s *Store) flush() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("error encoding preferences: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing preferences file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("error replacing preferences file: %w", err)
	}
	return nil
}
