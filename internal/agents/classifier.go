package agents

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/rs/zerolog/log"
)

// Keyword heuristics biasing the route choice. The rule pass is the primary,
// deterministic classifier; the LLM is only consulted when both vocabularies
// match and the message is genuinely ambiguous.
var (
	searchKeywords = []string{
		"find", "search", "buy", "shop", "shopping", "looking for", "price",
		"cost", "how much", "discount", "sale", "size", "in stock", "under",
		"найди", "найти", "поиск", "купить", "покупк", "цена", "сколько стоит",
		"скидк", "размер", "в наличии", "дешев",
	}
	outfitKeywords = []string{
		"wear", "outfit", "style", "styling", "dress up", "wardrobe", "look for me",
		"combine", "match with", "stylist", "what should i wear",
		"надеть", "одеть", "образ", "гардероб", "стиль", "сочета", "что мне носить",
	}
)

// Classifier decides which sub-agent handles a message.
type Classifier struct {
	provider llm.Provider
}

// NewClassifier creates a classifier over the given provider.
func NewClassifier(provider llm.Provider) *Classifier {
	return &Classifier{provider: provider}
}

// Classify routes a message to exactly one agent type, recording any
// tie-break token usage into usage. Given identical message and history, the
// rule pass is fully deterministic; the LLM tie-break runs at temperature 0.
func (c *Classifier) Classify(ctx context.Context, message string, history []models.ChatMessage, usage *Usage) models.AgentType {
	lower := strings.ToLower(message)

	searchHit := matchesAny(lower, searchKeywords)
	outfitHit := matchesAny(lower, outfitKeywords)

	switch {
	case searchHit && !outfitHit:
		return models.AgentSearch
	case outfitHit && !searchHit:
		return models.AgentOutfit
	case !searchHit && !outfitHit:
		return models.AgentGeneral
	}

	// Both vocabularies matched: ask the model to break the tie.
	if route, ok := c.llmRoute(ctx, message, history, usage); ok {
		return route
	}
	// Unreachable model: shopping language dominates styling language.
	return models.AgentSearch
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (c *Classifier) llmRoute(ctx context.Context, message string, history []models.ChatMessage, usage *Usage) (models.AgentType, bool) {
	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: message})

	completion, err := c.provider.Complete(ctx, &llm.CompletionRequest{
		System:      classifierSystemPrompt,
		Messages:    messages,
		MaxTokens:   32,
		JSONOutput:  true,
		Temperature: 0,
	})
	if err != nil {
		log.Warn().Err(err).Msg("route tie-break failed")
		return "", false
	}
	usage.add(completion)

	var reply struct {
		Route string `json:"route"`
	}
	if err := json.Unmarshal([]byte(extractJSON(completion.Content)), &reply); err != nil {
		log.Warn().Err(err).Msg("route tie-break returned malformed JSON")
		return "", false
	}

	switch models.AgentType(reply.Route) {
	case models.AgentSearch, models.AgentOutfit, models.AgentGeneral:
		return models.AgentType(reply.Route), true
	}
	return "", false
}

// extractJSON trims whatever surrounds the outermost JSON object: markdown
// fences, prose, stray whitespace. Providers without a native JSON mode
// occasionally wrap their reply.
func extractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
