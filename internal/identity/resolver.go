// Package identity derives stable user identifiers from free-text
// self-introductions ("my name is Raj", "call me Bob").
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// FallbackName is returned when no usable introduction is found in an
// utterance. Callers must not treat it as a real identity: routing every
// anonymous speaker into one shared bucket mixes strangers' histories, so
// the orchestrator mints an ephemeral identity instead.
const FallbackName = "User"

// Introduction phrases in priority order. The first phrase present anywhere
// in the lowercased utterance wins, regardless of its position.
var introPhrases = []string{
	"my name is ",
	"i'm ",
	"i am ",
	"call me ",
	"this is ",
}

// ResolveName scans an utterance for a self-introduction and returns the
// extracted display name. ok is false when the utterance contains no
// acceptable introduction, in which case name is FallbackName.
func ResolveName(utterance string) (name string, ok bool) {
	lowered := strings.ToLower(utterance)

	for _, phrase := range introPhrases {
		idx := strings.Index(lowered, phrase)
		if idx < 0 {
			continue
		}

		remaining := strings.TrimSpace(utterance[idx+len(phrase):])
		fields := strings.Fields(remaining)
		if len(fields) == 0 {
			continue
		}

		candidate := strings.Trim(fields[0], ".,!?")
		candidate = titleCase(candidate)
		if len(candidate) < 2 || !isAlphabetic(candidate) {
			continue
		}
		return candidate, true
	}

	return FallbackName, false
}

// UserID maps a display name to a stable identifier: the md5 of the
// lowercased name, truncated to 12 hex characters. Pure and deterministic,
// so the same name always lands on the same profile.
func UserID(name string) string {
	sum := md5.Sum([]byte(strings.ToLower(name)))
	return hex.EncodeToString(sum[:])[:12]
}

// EphemeralUserID mints a one-off identifier for a caller who never
// introduced themselves. Each anonymous conversation gets its own profile
// rather than sharing the fallback bucket.
func EphemeralUserID() string {
	return "anon-" + uuid.NewString()[:12]
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isAlphabetic(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}
