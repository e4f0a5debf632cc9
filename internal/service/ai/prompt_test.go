package ai

import (
	"strings"
	"testing"

	"github.com/solacechat/backend/internal/model/memory"
	memorysvc "github.com/solacechat/backend/internal/service/memory"
)

func TestBuildSystemPromptWithoutProfile(t *testing.T) {
	prompt := BuildSystemPrompt(nil)
	if !strings.Contains(prompt, "supportive AI companion") {
		t.Fatal("expected base prompt content")
	}
	if strings.Contains(prompt, "MEMORY CONTEXT") {
		t.Fatal("expected no memory block without a profile")
	}

	prompt = BuildSystemPrompt(&memorysvc.UserContext{})
	if strings.Contains(prompt, "MEMORY CONTEXT") {
		t.Fatal("expected no memory block for empty context")
	}
}

func TestBuildSystemPromptWithMemory(t *testing.T) {
	userCtx := &memorysvc.UserContext{
		Profile:        memory.NewUserProfile("u1", "Raj"),
		KeyTopics:      []string{"sleep", "work"},
		MoodPatterns:   []string{"tired"},
		PreviousAdvice: []string{"You could try a short walk before bed."},
		FollowUps:      []string{"User expressed interest in continuing conversation"},
	}

	prompt := BuildSystemPrompt(userCtx)

	for _, want := range []string{"MEMORY CONTEXT", "Raj", "sleep, work", "tired", "CONTINUITY GUIDELINES"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
}

func TestFallbackMessageCarriesCrisisLine(t *testing.T) {
	if !strings.Contains(FallbackMessage, "988") {
		t.Fatal("fallback message must reference the crisis line")
	}
}

func TestBuildHistoryMessagesLimit(t *testing.T) {
	messages := make([]memory.Message, 0, 14)
	for i := 0; i < 7; i++ {
		messages = append(messages,
			memory.Message{Role: "user", Content: "u"},
			memory.Message{Role: "assistant", Content: "a"},
		)
	}

	history := buildHistoryMessages(messages)
	if len(history) != 10 {
		t.Fatalf("expected history capped at 10, got %d", len(history))
	}
}

func TestBuildHistoryMessagesSkipsUnknownRoles(t *testing.T) {
	history := buildHistoryMessages([]memory.Message{
		{Role: "user", Content: "hello"},
		{Role: "system", Content: "ignored"},
		{Role: "assistant", Content: "hi"},
	})
	if len(history) != 2 {
		t.Fatalf("expected unknown roles dropped, got %d entries", len(history))
	}
}
