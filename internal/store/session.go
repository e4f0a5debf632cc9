package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/solacechat/backend/internal/model/memory"
)

// LoadSession reads one persisted session, or ErrNotFound.
func (s *FileStore) LoadSession(userID, sessionID string) (*memory.ChatSession, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.readSessionFile(s.sessionPath(userID, sessionID))
}

// SaveSession writes the session as a whole-file overwrite, creating the
// per-user directory on first use.
func (s *FileStore) SaveSession(session *memory.ChatSession) error {
	lock := s.userLock(session.UserID)
	lock.Lock()
	defer lock.Unlock()

	userDir := filepath.Join(s.sessionsDir, session.UserID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return fmt.Errorf("create session dir for %s: %w", session.UserID, err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.SessionID, err)
	}
	if err := os.WriteFile(s.sessionPath(session.UserID, session.SessionID), data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", session.SessionID, err)
	}
	return nil
}

// RecentSessions returns up to limit sessions for a user, newest first by
// file modification time. A user with no session directory simply has no
// sessions yet. Unreadable session files are skipped, not fatal.
func (s *FileStore) RecentSessions(userID string, limit int) ([]*memory.ChatSession, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	userDir := filepath.Join(s.sessionsDir, userID)
	entries, err := os.ReadDir(userDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions for %s: %w", userID, err)
	}

	type candidate struct {
		path  string
		mtime int64
	}
	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:  filepath.Join(userDir, entry.Name()),
			mtime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].mtime > candidates[j].mtime
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	sessions := make([]*memory.ChatSession, 0, len(candidates))
	for _, c := range candidates {
		session, err := s.readSessionFile(c.path)
		if err != nil {
			log.Printf("[store] skipping unreadable session %s: %v", c.path, err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *FileStore) readSessionFile(path string) (*memory.ChatSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}

	var session memory.ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	return &session, nil
}

func (s *FileStore) sessionPath(userID, sessionID string) string {
	return filepath.Join(s.sessionsDir, userID, sessionID+".json")
}
