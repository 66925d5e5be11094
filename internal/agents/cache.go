package agents

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// OutfitAgentCache memoizes one OutfitAgent per user. The cache is owned by
// the server for the process lifetime; entries are safe for concurrent
// reads. Invalidation is explicit — the HTTP layer calls it after wardrobe
// edits, nothing expires automatically.
type OutfitAgentCache struct {
	mu      sync.RWMutex
	entries map[int64]*OutfitAgent
	build   func(userID int64) *OutfitAgent
}

// NewOutfitAgentCache creates a cache that builds missing agents with build.
func NewOutfitAgentCache(build func(userID int64) *OutfitAgent) *OutfitAgentCache {
	return &OutfitAgentCache{
		entries: make(map[int64]*OutfitAgent),
		build:   build,
	}
}

// Get returns the user's agent, building and caching it on first use.
func (c *OutfitAgentCache) Get(userID int64) *OutfitAgent {
	c.mu.RLock()
	agent, ok := c.entries[userID]
	c.mu.RUnlock()
	if ok {
		return agent
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if agent, ok := c.entries[userID]; ok {
		return agent
	}
	agent = c.build(userID)
	c.entries[userID] = agent
	return agent
}

// Invalidate drops the user's cached agent.
func (c *OutfitAgentCache) Invalidate(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	log.Debug().Int64("user_id", userID).Msg("outfit agent invalidated")
}

// InvalidateAll drops every cached agent.
func (c *OutfitAgentCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]*OutfitAgent)
	log.Debug().Msg("outfit agent cache cleared")
}

// Len reports the number of cached agents.
func (c *OutfitAgentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
