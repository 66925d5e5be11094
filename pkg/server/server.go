// Package server wires the assistant core into a ready-to-serve HTTP
// server: configuration, telemetry, the catalog/wardrobe store, the chat
// history store, the language-model provider and the coordinator.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/closetmind/assistant/internal/agents"
	"github.com/closetmind/assistant/internal/api"
	"github.com/closetmind/assistant/internal/api/handlers"
	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/internal/history"
	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/store"
	"github.com/closetmind/assistant/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Server holds the initialized assistant service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Coordinator is the request-coordination core.
	Coordinator *agents.Coordinator

	// Store is the catalog/wardrobe read store.
	Store store.Store

	// History is the chat history store.
	History history.Store

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the service with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var dataStore store.Store
	switch cfg.StoreBackend {
	case "postgres":
		dataStore, err = store.NewPostgresStore(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	default:
		dataStore = store.NewMemoryStore()
		log.Info().Msg("in-memory catalog store initialized")
	}

	var historyStore history.Store
	switch cfg.HistoryBackend {
	case "redis":
		historyStore, err = history.NewRedisStore(cfg.Redis)
		if err != nil {
			dataStore.Close()
			return nil, fmt.Errorf("init redis history: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis history store initialized")
	default:
		historyStore = history.NewMemoryStore()
		log.Info().Msg("in-memory history store initialized")
	}

	provider, err := llm.New(cfg.LLM)
	if err != nil {
		dataStore.Close()
		historyStore.Close()
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	log.Info().Str("kind", provider.Kind()).Str("model", cfg.LLM.Model).Msg("llm provider initialized")

	coordinator := agents.NewCoordinator(dataStore, historyStore, provider, cfg.Agents)

	h := handlers.New(coordinator, historyStore)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Coordinator:  coordinator,
		Store:        dataStore,
		History:      historyStore,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// Close releases the stores.
func (s *Server) Close() {
	if err := s.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("store close failed")
	}
	if err := s.History.Close(); err != nil {
		log.Warn().Err(err).Msg("history close failed")
	}
}
