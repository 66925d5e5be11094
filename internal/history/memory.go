package history

import (
	"context"
	"sync"

	"github.com/closetmind/assistant/pkg/models"
)

// MemoryStore is a thread-safe in-memory history store.
type MemoryStore struct {
	mu    sync.RWMutex
	turns map[int64][]models.ChatTurn
}

// NewMemoryStore creates a new in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns: make(map[int64][]models.ChatTurn),
	}
}

// Append adds a turn to the end of a chat's history.
func (s *MemoryStore) Append(_ context.Context, chatID int64, turn models.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[chatID] = append(s.turns[chatID], turn)
	return nil
}

// Turns returns all turns for a chat, oldest first.
func (s *MemoryStore) Turns(_ context.Context, chatID int64) ([]models.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[chatID]
	out := make([]models.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// Clear removes a chat's history.
func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, chatID)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
