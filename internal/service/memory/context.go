// Package memory synthesizes a bounded conversational context from a
// user's profile and their most recent sessions.
package memory

import (
	"errors"
	"log"

	"github.com/solacechat/backend/internal/model/memory"
	"github.com/solacechat/backend/internal/store"
)

// Caps applied when aggregating across sessions. The context is injected
// into every model call, so it stays deliberately small.
const (
	recentSessionWindow = 3
	maxKeyTopics        = 5
	maxMoodPatterns     = 5
	maxPreviousAdvice   = 3
	maxFollowUps        = 3
)

// UserContext is the derived summary handed to prompt construction. It is
// never persisted; it is rebuilt from the stores on every turn.
type UserContext struct {
	Profile         *memory.UserProfile
	KeyTopics       []string
	MoodPatterns    []string
	PreviousAdvice  []string
	FollowUps       []string
	OngoingConcerns []string
}

// Service loads and aggregates persisted memory for prompt injection.
type Service struct {
	store *store.FileStore
}

// NewService wires the synthesizer to its backing store.
func NewService(fileStore *store.FileStore) *Service {
	return &Service{store: fileStore}
}

// UserContext builds the context summary for a user. Storage failures
// degrade to an emptier context rather than failing the turn: a missing
// profile or unreadable session list just means less continuity.
//
// Aggregation order is deterministic: sessions are scanned newest first
// and within each list the first occurrence of a value wins, so the most
// recent phrasing of a topic or advice snippet survives truncation.
func (s *Service) UserContext(userID string) *UserContext {
	ctx := &UserContext{}

	profile, err := s.store.LoadProfile(userID)
	if err == nil {
		ctx.Profile = profile
		ctx.OngoingConcerns = append(ctx.OngoingConcerns, profile.Concerns...)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[memory] loading profile %s: %v", userID, err)
	}

	sessions, err := s.store.RecentSessions(userID, recentSessionWindow)
	if err != nil {
		log.Printf("[memory] listing sessions for %s: %v", userID, err)
		return ctx
	}

	for _, session := range sessions {
		ctx.KeyTopics = mergeUnique(ctx.KeyTopics, session.TopicsDiscussed)
		ctx.MoodPatterns = mergeUnique(ctx.MoodPatterns, session.MoodIndicators)
		ctx.PreviousAdvice = mergeUnique(ctx.PreviousAdvice, session.AdviceGiven)
		ctx.FollowUps = mergeUnique(ctx.FollowUps, session.FollowUpsNeeded)
	}

	ctx.KeyTopics = truncate(ctx.KeyTopics, maxKeyTopics)
	ctx.MoodPatterns = truncate(ctx.MoodPatterns, maxMoodPatterns)
	ctx.PreviousAdvice = truncate(ctx.PreviousAdvice, maxPreviousAdvice)
	ctx.FollowUps = truncate(ctx.FollowUps, maxFollowUps)

	return ctx
}

func mergeUnique(dst []string, src []string) []string {
	for _, value := range src {
		seen := false
		for _, existing := range dst {
			if existing == value {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, value)
		}
	}
	return dst
}

func truncate(list []string, limit int) []string {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
