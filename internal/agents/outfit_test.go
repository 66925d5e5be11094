package agents_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/closetmind/assistant/internal/agents"
	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/store"
	"github.com/closetmind/assistant/pkg/models"
)

// brokenWardrobe fails wardrobe reads while keeping the catalog healthy.
type brokenWardrobe struct{ *store.MemoryStore }

func (brokenWardrobe) UserWardrobe(context.Context, int64) ([]models.WardrobeItem, error) {
	return nil, errors.New("wardrobe table unavailable")
}

const outfitReply = `{
	"outfit_description": "A relaxed everyday look with clean lines.",
	"items": [{"name": "Black T-Shirt", "category": "Tops", "image_url": "https://cdn.example.com/black-tee.jpg"}],
	"reasoning": "Simple pieces are easy to combine.",
	"occasion": "casual"
}`

func TestRecommend_WardrobeFailureFallsBackToCatalog(t *testing.T) {
	mock := llm.NewMock().Enqueue(outfitReply)
	agent := agents.NewOutfitAgent(1, brokenWardrobe{seededStore()}, mock, 3)

	outfit, _ := agent.Recommend(context.Background(), "something casual", nil)

	if len(outfit.Items) != 1 {
		t.Fatalf("items = %v, want one from the catalog pool", outfit.Items)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("made %d LLM calls, want 1", len(calls))
	}
	prompt := calls[0].Messages[len(calls[0].Messages)-1].Content
	if !strings.Contains(prompt, "STORE CATALOG ITEMS") {
		t.Error("prompt did not announce the catalog fallback pool")
	}
}

func TestRecommend_ImagelessWardrobeItemsExcluded(t *testing.T) {
	s := store.NewMemoryStore()
	s.PutWardrobeItem(models.WardrobeItem{
		ID: 1, UserID: 4, Name: "Photographed Jacket", Category: "jackets",
		ImageURL: "https://cdn.example.com/jacket.jpg",
	})
	s.PutWardrobeItem(models.WardrobeItem{
		ID: 2, UserID: 4, Name: "Unphotographed Scarf", Category: "accessories",
	})

	mock := llm.NewMock().Enqueue(outfitReply)
	agent := agents.NewOutfitAgent(4, s, mock, 3)

	agent.Recommend(context.Background(), "layer me up", nil)

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("made %d LLM calls, want 1", len(calls))
	}
	prompt := calls[0].Messages[len(calls[0].Messages)-1].Content
	if !strings.Contains(prompt, "Photographed Jacket") {
		t.Error("prompt lost the wardrobe item that has an image")
	}
	if strings.Contains(prompt, "Unphotographed Scarf") {
		t.Error("prompt offered an item without an image")
	}
}

func TestRecommend_StylingFeedbackInPrompt(t *testing.T) {
	s := store.NewMemoryStore()
	s.PutWardrobeItem(models.WardrobeItem{
		ID: 1, UserID: 6, Name: "Blue Shirt", Category: "shirts",
		ImageURL: "https://cdn.example.com/shirt.jpg",
	})

	mock := llm.NewMock().Enqueue(outfitReply)
	agent := agents.NewOutfitAgent(6, s, mock, 3)

	turns := []models.ChatTurn{
		{Role: models.RoleUser, Content: "that was too formal for me"},
		{Role: models.RoleAssistant, Content: "noted"},
	}
	agent.Recommend(context.Background(), "try again", turns)

	prompt := mock.Calls()[0].Messages[0].Content
	if !strings.Contains(prompt, "STYLING FEEDBACK") || !strings.Contains(prompt, "too formal") {
		t.Error("prompt did not fold in the styling feedback from prior turns")
	}
}
