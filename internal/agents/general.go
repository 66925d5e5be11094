package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/schema"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/rs/zerolog/log"
)

// GeneralAgent answers everything the other agents do not cover. Stateless
// beyond the conversation history passed in.
type GeneralAgent struct {
	provider llm.Provider
	retries  int
}

// NewGeneralAgent creates a general conversation agent.
func NewGeneralAgent(provider llm.Provider, retries int) *GeneralAgent {
	if retries < 0 {
		retries = 0
	}
	return &GeneralAgent{provider: provider, retries: retries}
}

// Answer replies to a general message. It never returns an error: failures
// yield a fixed apologetic response with response_type "error".
func (a *GeneralAgent) Answer(ctx context.Context, message string, history []models.ChatMessage) (models.GeneralResponse, Usage) {
	var usage Usage

	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: message})

	for attempt := 0; attempt <= a.retries; attempt++ {
		completion, err := a.provider.Complete(ctx, &llm.CompletionRequest{
			System:      generalSystemPrompt,
			Messages:    messages,
			JSONOutput:  true,
			Temperature: 0,
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("general call failed")
			continue
		}
		usage.add(completion)

		resp, err := parseGeneralResponse(completion.Content)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("general reply rejected")
			continue
		}
		return resp, usage
	}

	return errorGeneralResponse(), usage
}

// parseGeneralResponse validates and normalizes one model reply.
func parseGeneralResponse(content string) (models.GeneralResponse, error) {
	raw := extractJSON(content)
	if err := schema.Validate("general_response", raw); err != nil {
		return models.GeneralResponse{}, err
	}

	var resp models.GeneralResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return models.GeneralResponse{}, err
	}

	resp.Response = strings.TrimSpace(resp.Response)
	if n := utf8.RuneCountInString(resp.Response); n < models.MinGeneralResponseLen {
		return models.GeneralResponse{}, fmt.Errorf("response too short (%d chars)", n)
	}
	resp.Response = truncateRunes(resp.Response, models.MaxGeneralResponseLen)

	if !models.IsResponseType(resp.ResponseType) {
		resp.ResponseType = models.ResponseAnswer
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		resp.Confidence = 0.8
	}
	return resp, nil
}

func errorGeneralResponse() models.GeneralResponse {
	return models.GeneralResponse{
		Response:     "I'm sorry, I encountered an issue while processing your request. Please try again.",
		ResponseType: models.ResponseError,
		Confidence:   0.9,
	}
}
