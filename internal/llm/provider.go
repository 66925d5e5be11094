// Package llm contains the language-model provider clients used by the
// agents. Providers expose a single structured-completion call; callers
// validate the returned content and decide whether to retry.
package llm

import (
	"context"
	"fmt"

	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/pkg/models"
)

// CompletionRequest is one structured chat completion call.
type CompletionRequest struct {
	// System is the system prompt; sent via the provider's native mechanism.
	System string
	// Messages are prior turns plus the current user message, oldest first.
	Messages []models.ChatMessage
	// MaxTokens bounds the response; 0 uses the provider default.
	MaxTokens int
	// JSONOutput requests a JSON-object response where the provider
	// supports a native JSON mode.
	JSONOutput bool
	// Temperature of 0 keeps routing and validation deterministic.
	Temperature float64
}

// Completion is the provider's response with token accounting.
type Completion struct {
	Content      string
	InputTokens  int64
	OutputTokens int64
}

// Provider is a language-model backend.
type Provider interface {
	Kind() string
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// New builds the provider selected by configuration.
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Kind {
	case "openai", "azure-openai", "":
		return NewOpenAI(cfg), nil
	case "anthropic":
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider kind %q", cfg.Kind)
	}
}
