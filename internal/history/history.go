// Package history stores and reads per-chat conversation turns and adapts
// them into the message format the language-model providers expect.
//
// The core only reads history while coordinating a request; the HTTP layer
// appends the user turn before a request and the assistant turn after.
package history

import (
	"context"
	"strings"

	"github.com/closetmind/assistant/pkg/models"
)

// Store persists ordered conversation turns keyed by chat id.
type Store interface {
	// Append adds a turn to the end of a chat's history.
	Append(ctx context.Context, chatID int64, turn models.ChatTurn) error

	// Turns returns all turns for a chat, oldest first. A chat with no
	// history yields an empty slice, not an error.
	Turns(ctx context.Context, chatID int64) ([]models.ChatTurn, error)

	// Clear removes a chat's history.
	Clear(ctx context.Context, chatID int64) error

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases held resources.
	Close() error
}

// ToChatMessages converts stored turns to provider messages, preserving
// order. Turns with roles other than user/assistant are skipped.
func ToChatMessages(turns []models.ChatTurn) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role != models.RoleUser && t.Role != models.RoleAssistant {
			continue
		}
		out = append(out, models.ChatMessage{Role: t.Role, Content: t.Content})
	}
	return out
}

// Styling feedback phrases scanned for in prior user turns. Matching is
// case-insensitive substring; the hits are folded into the outfit prompt as
// ephemeral context, never persisted.
var stylingSignals = []string{
	"too formal", "too casual", "too bright", "too dark", "too tight", "too loose",
	"don't like", "dont like", "hate", "love", "prefer", "favorite", "favourite",
	"black", "white", "red", "blue", "green", "yellow", "pink", "beige", "grey", "gray",
	"слишком формально", "слишком ярко", "не нравится", "нравится", "предпочитаю",
	"черный", "чёрный", "белый", "красный", "синий", "зеленый", "зелёный",
}

// StylingFeedback extracts styling-related fragments from prior user turns,
// most recent last. Used as prompt-only preference context; an empty history
// resets all learned preferences.
func StylingFeedback(turns []models.ChatTurn) []string {
	var out []string
	for _, t := range turns {
		if t.Role != models.RoleUser {
			continue
		}
		lower := strings.ToLower(t.Content)
		for _, sig := range stylingSignals {
			if strings.Contains(lower, sig) {
				out = append(out, t.Content)
				break
			}
		}
	}
	return out
}
