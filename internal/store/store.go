// Package store persists user profiles and chat sessions as one JSON
// document per entity. Profiles live under <dir>/profiles, sessions under
// <dir>/sessions/<user_id>. Writes are whole-file overwrites serialized
// per user id, so concurrent requests for the same user cannot interleave.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound reports that no record exists for the requested identifier.
var ErrNotFound = errors.New("record not found")

// FileStore implements profile and session persistence on the local
// filesystem. The zero value is not usable; construct with New.
type FileStore struct {
	profilesDir string
	sessionsDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates the storage directories and returns a ready store.
func New(dataDir string) (*FileStore, error) {
	profilesDir := filepath.Join(dataDir, "profiles")
	sessionsDir := filepath.Join(dataDir, "sessions")

	for _, dir := range []string{profilesDir, sessionsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}

	return &FileStore{
		profilesDir: profilesDir,
		sessionsDir: sessionsDir,
		locks:       make(map[string]*sync.Mutex),
	}, nil
}

// userLock returns the mutex serializing access to one user's files.
// Locks are never released back; the map grows by one entry per distinct
// user seen by this process, which mirrors the on-disk footprint.
func (s *FileStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
