// Package ai owns the outbound model call: prompt assembly, the eino
// invocation chain, and the timeout/retry policy around it.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/solacechat/backend/internal/config"
	"github.com/solacechat/backend/internal/model/memory"
	memorysvc "github.com/solacechat/backend/internal/service/memory"
)

// ErrModelUnavailable reports that the model could not produce a response
// within the configured retry budget. Callers substitute FallbackMessage.
var ErrModelUnavailable = errors.New("model unavailable")

const historyLimit = 10

// Service encapsulates the model invocation chain.
type Service struct {
	chain       compose.Runnable[map[string]any, *schema.Message]
	callTimeout time.Duration
	maxRetries  int
}

// NewService compiles the chat chain from configuration. It fails when the
// model credentials are missing or the chain cannot be compiled.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	return &Service{
		chain:       runnable,
		callTimeout: cfg.CallTimeout,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// GenerateResponse runs one model call with the user's memory context and
// the tail of the session transcript. Each attempt gets its own timeout;
// transient failures are retried with jittered backoff, and exhaustion
// surfaces ErrModelUnavailable so the orchestrator can degrade safely.
func (s *Service) GenerateResponse(ctx context.Context, userCtx *memorysvc.UserContext, history []memory.Message, userMessage string) (string, error) {
	input := map[string]any{
		"system":  BuildSystemPrompt(userCtx),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			backoff += time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrModelUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		response, err := s.chain.Invoke(callCtx, input)
		cancel()
		if err == nil {
			return response.Content, nil
		}

		lastErr = err
		log.Printf("[ai] model call attempt %d/%d failed: %v", attempt+1, s.maxRetries+1, err)
	}

	return "", fmt.Errorf("%w: %v", ErrModelUnavailable, lastErr)
}

// buildHistoryMessages converts the newest transcript entries into the
// schema the chain expects. Only the last historyLimit raw messages are
// forwarded; older context arrives through the memory summary instead.
func buildHistoryMessages(messages []memory.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case "user":
			history = append(history, schema.UserMessage(msg.Content))
		case "assistant":
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
