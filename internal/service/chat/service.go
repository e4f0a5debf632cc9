// Package chat orchestrates one conversation turn: identity resolution,
// memory loading, the model call, insight extraction, and persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/solacechat/backend/internal/analysis/insight"
	"github.com/solacechat/backend/internal/identity"
	"github.com/solacechat/backend/internal/model/memory"
	"github.com/solacechat/backend/internal/service/ai"
	memorysvc "github.com/solacechat/backend/internal/service/memory"
	"github.com/solacechat/backend/internal/store"
)

// errorSessionID is reported in place of a session id when a turn fails
// before the caller ever held an established session.
const errorSessionID = "error_session"

// Responder produces an assistant reply for one turn. *ai.Service is the
// production implementation; tests substitute stubs.
type Responder interface {
	GenerateResponse(ctx context.Context, userCtx *memorysvc.UserContext, history []memory.Message, userMessage string) (string, error)
}

// Service wires the memory subsystem to the model for each inbound message.
type Service struct {
	store     *store.FileStore
	contexts  *memorysvc.Service
	extractor *insight.Extractor
	responder Responder
	cache     *sessionCache

	mu        sync.Mutex
	turnLocks map[string]*sync.Mutex
}

// NewService constructs the orchestrator. cacheSize bounds the live
// session cache; evicted sessions are reloaded from disk.
func NewService(fileStore *store.FileStore, contexts *memorysvc.Service, extractor *insight.Extractor, responder Responder, cacheSize int) *Service {
	return &Service{
		store:     fileStore,
		contexts:  contexts,
		extractor: extractor,
		responder: responder,
		cache:     newSessionCache(cacheSize),
		turnLocks: make(map[string]*sync.Mutex),
	}
}

// turnLock returns the mutex serializing turns on one session. The store's
// per-user mutex only covers file I/O; this one protects the shared
// in-memory session record for the duration of a whole turn, so two
// concurrent requests on the same session id cannot interleave mutations.
// Like the store's lock map it grows by one entry per session id seen.
func (s *Service) turnLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.turnLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.turnLocks[sessionID] = lock
	}
	return lock
}

// HandleMessage processes one user message and returns the assistant reply
// together with the session id the caller should carry forward.
//
// Storage failures never fail the turn: the reply is still returned, just
// not durably remembered. Only a model failure degrades the reply itself,
// to a fixed safe fallback.
func (s *Service) HandleMessage(ctx context.Context, userMessage, sessionID string) (string, string) {
	userID, profile := s.resolveUser(userMessage, sessionID)

	established := sessionID != ""
	if !established {
		sessionID = newSessionID(userID)
	}

	lock := s.turnLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session := s.getOrCreateSession(userID, sessionID)

	userCtx := s.contexts.UserContext(userID)

	reply, err := s.responder.GenerateResponse(ctx, userCtx, session.Messages, userMessage)
	if err != nil {
		log.Printf("[chat] model call failed for session=%s: %v", sessionID, err)
		if !established {
			// The caller never held this session id, so hand back the
			// sentinel instead of an id with no state behind it.
			sessionID = errorSessionID
		}
		return ai.FallbackMessage, sessionID
	}

	session.AppendTurn(userMessage, reply)
	wasHigh := session.RiskLevel == memory.RiskHigh
	s.extractor.Extract(session, userMessage, reply)
	if !wasHigh && session.RiskLevel == memory.RiskHigh {
		log.Printf("[chat] risk level escalated to high for session=%s", sessionID)
	}

	// Topics surfacing in conversation become standing concerns on the
	// profile, so later sessions see them even outside the recency window.
	for _, topic := range session.TopicsDiscussed {
		profile.AddConcern(topic)
	}

	if err := s.store.SaveSession(session); err != nil {
		log.Printf("[chat] session %s not durable: %v", sessionID, err)
	}
	if err := s.store.SaveProfile(profile); err != nil {
		log.Printf("[chat] profile %s not durable: %v", userID, err)
	}
	s.cache.Put(sessionID, session)

	return reply, sessionID
}

// resolveUser determines who is speaking. An explicit introduction always
// wins; otherwise the session id's owner prefix identifies the caller; a
// caller with neither gets a fresh ephemeral identity instead of being
// merged into a shared anonymous bucket.
func (s *Service) resolveUser(userMessage, sessionID string) (string, *memory.UserProfile) {
	name, introduced := identity.ResolveName(userMessage)

	var userID string
	switch {
	case introduced:
		userID = identity.UserID(name)
	case sessionID != "":
		userID = sessionOwner(sessionID)
	default:
		userID = identity.EphemeralUserID()
	}

	profile, err := s.store.LoadProfile(userID)
	if err == nil {
		return userID, profile
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[chat] loading profile %s: %v", userID, err)
	}

	profile = memory.NewUserProfile(userID, name)
	if err := s.store.SaveProfile(profile); err != nil {
		log.Printf("[chat] new profile %s not durable: %v", userID, err)
	} else {
		log.Printf("[chat] created profile for %s (id=%s)", name, userID)
	}
	return userID, profile
}

// getOrCreateSession checks the cache first, then disk, then starts a
// fresh session for this id.
func (s *Service) getOrCreateSession(userID, sessionID string) *memory.ChatSession {
	if session, ok := s.cache.Get(sessionID); ok {
		return session
	}

	owner := sessionOwner(sessionID)
	session, err := s.store.LoadSession(owner, sessionID)
	if err == nil {
		return session
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[chat] loading session %s: %v", sessionID, err)
	}

	return memory.NewChatSession(sessionID, userID)
}

// newSessionID builds a sortable session id from the owner and the
// creation moment: <user_id>_<YYYYMMDD_HHMMSS>.
func newSessionID(userID string) string {
	return fmt.Sprintf("%s_%s", userID, time.Now().UTC().Format("20060102_150405"))
}

// sessionOwner recovers the owning user id from a session id. User ids
// never contain underscores, so everything before the first one is the
// owner. Malformed ids fall back to the whole string.
func sessionOwner(sessionID string) string {
	if idx := strings.Index(sessionID, "_"); idx > 0 {
		return sessionID[:idx]
	}
	return sessionID
}
