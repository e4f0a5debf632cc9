package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/solacechat/backend/internal/model/memory"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return s
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)

	age := 29
	profile := memory.NewUserProfile("abc123def456", "Raj")
	profile.Age = &age
	profile.Concerns = []string{"sleep", "work"}
	profile.Preferences = map[string]string{"tone": "casual"}
	profile.EmergencyContact = "sister"

	if err := s.SaveProfile(profile); err != nil {
		t.Fatalf("SaveProfile err: %v", err)
	}

	loaded, err := s.LoadProfile("abc123def456")
	if err != nil {
		t.Fatalf("LoadProfile err: %v", err)
	}

	// Every field must survive except LastActive, which save refreshes.
	loaded.LastActive = profile.LastActive
	if !reflect.DeepEqual(profile, loaded) {
		t.Fatalf("profile round trip mismatch:\nsaved  %+v\nloaded %+v", profile, loaded)
	}
}

func TestSaveProfileRefreshesLastActive(t *testing.T) {
	s := newTestStore(t)

	profile := memory.NewUserProfile("abc123def456", "Raj")
	before := profile.LastActive

	time.Sleep(5 * time.Millisecond)
	if err := s.SaveProfile(profile); err != nil {
		t.Fatalf("SaveProfile err: %v", err)
	}

	if !profile.LastActive.After(before) {
		t.Fatal("expected LastActive to be refreshed on save")
	}
}

func TestLoadProfileNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LoadProfile("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	session := memory.NewChatSession("u1_20250901_120000", "u1")
	session.AppendTurn("I can't sleep", "That sounds exhausting. How long has it been going on?")
	session.TopicsDiscussed = []string{"sleep"}
	session.MoodIndicators = []string{"tired"}
	session.AdviceGiven = []string{"You could try a short walk before bed."}
	session.FollowUpsNeeded = []string{"User expressed interest in continuing conversation"}

	if err := s.SaveSession(session); err != nil {
		t.Fatalf("SaveSession err: %v", err)
	}

	loaded, err := s.LoadSession("u1", "u1_20250901_120000")
	if err != nil {
		t.Fatalf("LoadSession err: %v", err)
	}
	if !reflect.DeepEqual(session, loaded) {
		t.Fatalf("session round trip mismatch:\nsaved  %+v\nloaded %+v", session, loaded)
	}
}

func TestLoadSessionNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LoadSession("u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecentSessionsOrderAndLimit(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	ids := []string{"u1_20250901_090000", "u1_20250901_100000", "u1_20250901_110000"}
	for _, id := range ids {
		if err := s.SaveSession(memory.NewChatSession(id, "u1")); err != nil {
			t.Fatalf("SaveSession err: %v", err)
		}
	}

	// Pin distinct mtimes so ordering does not depend on write timing.
	base := time.Now().Add(-time.Hour)
	for i, id := range ids {
		path := filepath.Join(dir, "sessions", "u1", id+".json")
		stamp := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatalf("Chtimes err: %v", err)
		}
	}

	sessions, err := s.RecentSessions("u1", 2)
	if err != nil {
		t.Fatalf("RecentSessions err: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != ids[2] || sessions[1].SessionID != ids[1] {
		t.Fatalf("expected newest-first ordering, got %s then %s",
			sessions[0].SessionID, sessions[1].SessionID)
	}
}

func TestRecentSessionsNoDirectory(t *testing.T) {
	s := newTestStore(t)

	sessions, err := s.RecentSessions("nobody", 3)
	if err != nil {
		t.Fatalf("RecentSessions err: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestRecentSessionsSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	if err := s.SaveSession(memory.NewChatSession("u1_20250901_090000", "u1")); err != nil {
		t.Fatalf("SaveSession err: %v", err)
	}
	corrupt := filepath.Join(dir, "sessions", "u1", "u1_20250901_100000.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile err: %v", err)
	}

	sessions, err := s.RecentSessions("u1", 5)
	if err != nil {
		t.Fatalf("RecentSessions err: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected corrupt file to be skipped, got %d sessions", len(sessions))
	}
}
