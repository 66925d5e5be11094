// Package agents implements the ClosetMind request-coordination core: a
// coordinator that classifies each shopper message and delegates it to
// exactly one of three specialized agents (catalog search, outfit
// recommendation, general conversation), each of which calls the language
// model, validates the structured reply and retries within its budget.
package agents

import (
	"context"
	"time"

	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/internal/history"
	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/store"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("closetmind-assistant")

// Coordinator is the top-level agent. One instance serves the whole process;
// per-user outfit agents live in its cache.
type Coordinator struct {
	classifier *Classifier
	search     *SearchAgent
	general    *GeneralAgent
	outfits    *OutfitAgentCache
	history    history.Store
}

// NewCoordinator wires the coordinator with its sub-agents.
func NewCoordinator(s store.Store, h history.Store, provider llm.Provider, cfg config.AgentConfig) *Coordinator {
	return &Coordinator{
		classifier: NewClassifier(provider),
		search:     NewSearchAgent(s, provider, cfg.SearchRetries),
		general:    NewGeneralAgent(provider, cfg.GeneralRetries),
		outfits: NewOutfitAgentCache(func(userID int64) *OutfitAgent {
			return NewOutfitAgent(userID, s, provider, cfg.OutfitRetries)
		}),
		history: h,
	}
}

// Outfits exposes the per-user agent cache for explicit invalidation after
// wardrobe edits.
func (c *Coordinator) Outfits() *OutfitAgentCache { return c.outfits }

// Coordinate classifies the message, runs exactly one sub-agent and wraps
// its result in a uniform envelope. It never returns an error or panics to
// the caller: every failure path produces a valid envelope carrying a
// GeneralResponse with response_type "error". ProcessingTimeMs covers wall
// time from entry to return on every path.
func (c *Coordinator) Coordinate(ctx context.Context, message string, userID, chatID int64) (envelope *models.AgentEnvelope) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "coordinate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("closetmind.user_id", userID),
		attribute.Int64("closetmind.chat_id", chatID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("user_id", userID).Msg("coordinator panic")
			envelope = errorEnvelope(time.Since(start))
		}
		span.SetAttributes(attribute.String("closetmind.agent_type", string(envelope.AgentType)))
	}()

	// History is read before any sub-agent runs so prompt ordering matches
	// actual message order. A failed read degrades to an empty history.
	turns, err := c.history.Turns(ctx, chatID)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("history read failed, continuing without context")
		turns = nil
	}
	msgs := history.ToChatMessages(turns)

	// The tie-break call, when it happens, counts toward the envelope too.
	var usage Usage
	route := c.classifier.Classify(ctx, message, msgs, &usage)
	log.Info().
		Str("route", string(route)).
		Int64("user_id", userID).
		Int64("chat_id", chatID).
		Msg("request routed")

	var result models.AgentResult
	var agentUsage Usage
	switch route {
	case models.AgentSearch:
		result, agentUsage = c.search.Search(ctx, message, msgs)
	case models.AgentOutfit:
		result, agentUsage = c.outfits.Get(userID).Recommend(ctx, message, turns)
	default:
		result, agentUsage = c.general.Answer(ctx, message, msgs)
	}
	usage.Input += agentUsage.Input
	usage.Output += agentUsage.Output

	return models.NewEnvelope(result, time.Since(start), usage.Input, usage.Output)
}

func errorEnvelope(elapsed time.Duration) *models.AgentEnvelope {
	result := models.GeneralResponse{
		Response:     "I apologize, but I encountered an error while processing your request. Please try again, and if the problem persists, contact support.",
		ResponseType: models.ResponseError,
		Confidence:   0.9,
	}
	return models.NewEnvelope(result, elapsed, 0, 0)
}
