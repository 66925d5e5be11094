// Package handlers implements the HTTP handlers for the assistant core.
// The chat handler owns history persistence around the coordinator call:
// the user turn is appended before coordination, the assistant turn after.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/closetmind/assistant/internal/agents"
	"github.com/closetmind/assistant/internal/history"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Coordinator *agents.Coordinator
	History     history.Store
}

// New creates a Handlers instance.
func New(coordinator *agents.Coordinator, h history.Store) *Handlers {
	return &Handlers{Coordinator: coordinator, History: h}
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
	ChatID  int64  `json:"chat_id"`
}

// Chat runs one coordinated request and persists both turns of the
// exchange. The coordinator itself never fails; only malformed input
// produces a non-200 response.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID <= 0 || req.ChatID <= 0 {
		respondError(w, http.StatusBadRequest, "user_id and chat_id are required")
		return
	}

	ctx := r.Context()

	if err := h.History.Append(ctx, req.ChatID, models.ChatTurn{
		Role:      models.RoleUser,
		Content:   req.Message,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Int64("chat_id", req.ChatID).Msg("failed to persist user turn")
	}

	envelope := h.Coordinator.Coordinate(ctx, req.Message, req.UserID, req.ChatID)

	if content, err := json.Marshal(envelope.Result); err == nil {
		if err := h.History.Append(ctx, req.ChatID, models.ChatTurn{
			Role:      models.RoleAssistant,
			Content:   string(content),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			log.Warn().Err(err).Int64("chat_id", req.ChatID).Msg("failed to persist assistant turn")
		}
	}

	respondJSON(w, http.StatusOK, envelope)
}

// InvalidateOutfitAgent drops the user's cached outfit agent. Called by the
// wardrobe CRUD layer after material wardrobe edits.
func (h *Handlers) InvalidateOutfitAgent(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	h.Coordinator.Outfits().Invalidate(userID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// ClearChatHistory removes a chat's stored turns.
func (h *Handlers) ClearChatHistory(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil || chatID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	if err := h.History.Clear(r.Context(), chatID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
