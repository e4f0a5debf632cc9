// Package insight classifies conversation turns against keyword rule
// tables: topic and mood categories on the user side, advice phrasing on
// the assistant side, plus follow-up intent and crisis language.
package insight

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/solacechat/backend/internal/model/memory"
)

// RuleTable maps a category name to the substrings that trigger it.
// Detection is plain substring matching over the lowercased message; the
// tables are data so they can be swapped without touching control flow.
type RuleTable map[string][]string

const (
	adviceSnippetLimit = 100
	followUpNote       = "User expressed interest in continuing conversation"
)

var defaultTopics = RuleTable{
	"sleep":         {"sleep", "insomnia", "tired", "sleepy", "awake", "rest"},
	"anxiety":       {"anxious", "anxiety", "worried", "panic", "stress"},
	"depression":    {"sad", "depressed", "hopeless", "down", "empty"},
	"work":          {"work", "job", "boss", "colleague", "office", "career"},
	"relationships": {"friend", "family", "partner", "relationship", "social"},
	"health":        {"health", "medication", "doctor", "physical", "body"},
}

var defaultMoods = RuleTable{
	"positive": {"good", "happy", "better", "great", "fine", "okay"},
	"negative": {"bad", "terrible", "awful", "horrible", "worse"},
	"anxious":  {"anxious", "worried", "nervous", "stressed"},
	"sad":      {"sad", "down", "depressed", "hopeless", "empty"},
	"tired":    {"tired", "exhausted", "sleepy", "fatigue"},
}

var advicePhrases = []string{
	"try", "consider", "might help", "suggestion", "recommend",
	"could", "maybe", "perhaps", "what if", "how about",
}

var followUpPhrases = []string{
	"follow up", "next time", "again", "continue",
}

// Crisis language escalates the session risk level. Matching any of these
// is a strong signal regardless of surrounding context.
var crisisPhrases = []string{
	"suicide", "kill myself", "self-harm", "self harm", "hurt myself",
	"end my life", "want to die", "no reason to live",
}

// Extractor scans completed message pairs and appends novel findings to
// the active session. The zero-value tables fall back to the defaults.
type Extractor struct {
	topics RuleTable
	moods  RuleTable
}

// NewExtractor returns an extractor using the default rule tables.
func NewExtractor() *Extractor {
	return &Extractor{topics: defaultTopics, moods: defaultMoods}
}

// NewExtractorWithTables returns an extractor with custom rule tables,
// for callers that want different vocabularies.
func NewExtractorWithTables(topics, moods RuleTable) *Extractor {
	e := NewExtractor()
	if topics != nil {
		e.topics = topics
	}
	if moods != nil {
		e.moods = moods
	}
	return e
}

// Extract classifies a user/assistant exchange and records what it finds
// on the session. Topic, mood and advice entries are deduplicated by exact
// string equality, so feeding the same pair twice adds nothing new there.
// Follow-up notes are appended unconditionally; that duplication is
// long-standing observable behavior and is kept as-is.
func (e *Extractor) Extract(session *memory.ChatSession, userMessage, assistantMessage string) {
	userLower := strings.ToLower(userMessage)

	// Categories are scanned in sorted order so repeated runs write the
	// session lists in a stable order.
	for _, topic := range sortedCategories(e.topics) {
		if matchesAny(userLower, e.topics[topic]) {
			session.TopicsDiscussed = appendUnique(session.TopicsDiscussed, topic)
		}
	}

	for _, mood := range sortedCategories(e.moods) {
		if matchesAny(userLower, e.moods[mood]) {
			session.MoodIndicators = appendUnique(session.MoodIndicators, mood)
		}
	}

	if matchesAny(strings.ToLower(assistantMessage), advicePhrases) {
		session.AdviceGiven = appendUnique(session.AdviceGiven, adviceSnippet(assistantMessage))
	}

	if matchesAny(userLower, followUpPhrases) {
		session.FollowUpsNeeded = append(session.FollowUpsNeeded, followUpNote)
	}

	if matchesAny(userLower, crisisPhrases) {
		session.EscalateRisk(memory.RiskHigh)
	}
}

// adviceSnippet keeps the first adviceSnippetLimit characters of an
// assistant reply as the advice record, ellipsis-suffixed when the reply
// runs long. The cut is by rune, never mid-character.
func adviceSnippet(reply string) string {
	if utf8.RuneCountInString(reply) <= adviceSnippetLimit {
		return reply
	}
	runes := []rune(reply)
	return string(runes[:adviceSnippetLimit]) + "..."
}

func sortedCategories(table RuleTable) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func matchesAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
