package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/solacechat/backend/internal/model/memory"
)

// LoadProfile reads the persisted profile for userID, or ErrNotFound.
func (s *FileStore) LoadProfile(userID string) (*memory.UserProfile, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(s.profilePath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read profile %s: %w", userID, err)
	}

	var profile memory.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return &profile, nil
}

// SaveProfile writes the profile as a whole-file overwrite, refreshing
// LastActive first. A returned error means the state is not durable;
// callers are expected to log and carry on with the turn.
func (s *FileStore) SaveProfile(profile *memory.UserProfile) error {
	lock := s.userLock(profile.UserID)
	lock.Lock()
	defer lock.Unlock()

	profile.LastActive = time.Now().UTC()

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", profile.UserID, err)
	}
	if err := os.WriteFile(s.profilePath(profile.UserID), data, 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *FileStore) profilePath(userID string) string {
	return filepath.Join(s.profilesDir, userID+".json")
}
