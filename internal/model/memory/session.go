package memory

import (
	"time"
)

// Risk levels assigned to a session. Sessions start low and are only ever
// escalated; there is no de-escalation path.
const (
	RiskLow  = "low"
	RiskHigh = "high"
)

// Message is a single turn inside a session transcript. Turns are
// append-only and their order is chronological.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession holds one conversation and the insights extracted from it.
// Like UserProfile, the JSON tags define the persisted format.
type ChatSession struct {
	SessionID       string     `json:"session_id"`
	UserID          string     `json:"user_id"`
	Messages        []Message  `json:"messages"`
	TopicsDiscussed []string   `json:"topics_discussed"`
	MoodIndicators  []string   `json:"mood_indicators"`
	AdviceGiven     []string   `json:"advice_given"`
	FollowUpsNeeded []string   `json:"follow_ups_needed"`
	RiskLevel       string     `json:"risk_level"`
	SessionSummary  string     `json:"session_summary"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

// NewChatSession provisions an empty session owned by the given user.
func NewChatSession(sessionID, userID string) *ChatSession {
	return &ChatSession{
		SessionID:       sessionID,
		UserID:          userID,
		Messages:        []Message{},
		TopicsDiscussed: []string{},
		MoodIndicators:  []string{},
		AdviceGiven:     []string{},
		FollowUpsNeeded: []string{},
		RiskLevel:       RiskLow,
		StartedAt:       time.Now().UTC(),
	}
}

// AppendTurn records a completed user/assistant exchange on the transcript.
func (s *ChatSession) AppendTurn(userMessage, assistantMessage string) {
	now := time.Now().UTC()
	s.Messages = append(s.Messages,
		Message{Role: "user", Content: userMessage, Timestamp: now},
		Message{Role: "assistant", Content: assistantMessage, Timestamp: now},
	)
}

// RecentMessages returns up to limit of the newest transcript entries.
func (s *ChatSession) RecentMessages(limit int) []Message {
	if limit <= 0 || len(s.Messages) <= limit {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-limit:]
}

// EscalateRisk raises the session risk level and reports whether this call
// performed the transition. Lowering is not supported.
func (s *ChatSession) EscalateRisk(level string) bool {
	if s.RiskLevel == RiskHigh || level != RiskHigh {
		return false
	}
	s.RiskLevel = RiskHigh
	return true
}
