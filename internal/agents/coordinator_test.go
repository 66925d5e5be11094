package agents_test

import (
	"context"
	"errors"
	"testing"

	"github.com/closetmind/assistant/internal/agents"
	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/internal/history"
	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/store"
	"github.com/closetmind/assistant/pkg/models"
)

func testConfig() config.AgentConfig {
	return config.AgentConfig{SearchRetries: 3, OutfitRetries: 3, GeneralRetries: 2}
}

func seededStore() *store.MemoryStore {
	s := store.NewMemoryStore()
	s.PutProduct(models.CatalogProduct{
		ID: 1, Name: "Black T-Shirt", Category: "T-Shirts", Price: 5990,
		Rating: 4.5, StockQuantity: 10, IsActive: true,
		ImageURLs: []string{"https://cdn.example.com/black-tee.jpg"},
	})
	s.PutProduct(models.CatalogProduct{
		ID: 2, Name: "Navy Blazer", Category: "Jackets", Price: 34990,
		Rating: 4.7, StockQuantity: 4, IsActive: true,
		ImageURLs: []string{"https://cdn.example.com/blazer.jpg"},
	})
	return s
}

func newCoordinator(t *testing.T, s store.Store, mock *llm.MockProvider) (*agents.Coordinator, history.Store) {
	t.Helper()
	h := history.NewMemoryStore()
	return agents.NewCoordinator(s, h, mock, testConfig()), h
}

func TestCoordinate_SearchRoute(t *testing.T) {
	mock := llm.NewMock().Enqueue(`{"products":[{"name":"Black T-Shirt"}],"search_query":"black t-shirt","total_found":1}`)
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "find me a black t-shirt", 1, 1)

	if env.AgentType != models.AgentSearch {
		t.Fatalf("AgentType = %q, want search", env.AgentType)
	}
	list, ok := env.Result.(models.ProductList)
	if !ok {
		t.Fatalf("Result is %T, want ProductList", env.Result)
	}
	if list.TotalFound != 1 || len(list.Products) != 1 {
		t.Fatalf("list = %+v, want one product", list)
	}
	p := list.Products[0]
	if p.Name != "Black T-Shirt" {
		t.Errorf("product name = %q", p.Name)
	}
	if p.Price != "₸5,990" {
		t.Errorf("price = %q, want ₸5,990", p.Price)
	}
	if p.Link != "/products/1" {
		t.Errorf("link = %q, want /products/1", p.Link)
	}
	if len(p.ImageURLs) != 1 || p.ImageURLs[0] != "https://cdn.example.com/black-tee.jpg" {
		t.Errorf("image URLs did not survive the round trip: %v", p.ImageURLs)
	}
	if env.InputTokens == 0 || env.TotalTokens != env.InputTokens+env.OutputTokens {
		t.Errorf("token accounting wrong: %+v", env)
	}
}

func TestCoordinate_SearchRetriesOnBadShape(t *testing.T) {
	mock := llm.NewMock().
		Enqueue(`{"wrong":"shape"}`).
		Enqueue(`{"products":[{"name":"Black T-Shirt"}]}`)
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "find a t-shirt", 1, 1)

	list := env.Result.(models.ProductList)
	if len(list.Products) != 1 {
		t.Fatalf("retry did not recover: %+v", list)
	}
	if calls := len(mock.Calls()); calls != 2 {
		t.Errorf("made %d LLM calls, want 2", calls)
	}
}

func TestCoordinate_SearchNoMatchesPreservesQuery(t *testing.T) {
	mock := llm.NewMock().Enqueue(`{"products":[]}`)
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "find a spacesuit", 1, 1)

	list := env.Result.(models.ProductList)
	if len(list.Products) != 0 || list.TotalFound != 0 {
		t.Errorf("list = %+v, want empty", list)
	}
	if list.SearchQuery != "find a spacesuit" {
		t.Errorf("SearchQuery = %q, want original message", list.SearchQuery)
	}
}

func TestCoordinate_SearchEmptyCatalog(t *testing.T) {
	mock := llm.NewMock()
	c, _ := newCoordinator(t, store.NewMemoryStore(), mock)

	env := c.Coordinate(context.Background(), "buy a jacket", 1, 1)

	list := env.Result.(models.ProductList)
	if len(list.Products) != 0 {
		t.Errorf("list = %+v, want empty", list)
	}
	if calls := len(mock.Calls()); calls != 0 {
		t.Errorf("made %d LLM calls against an empty catalog, want 0", calls)
	}
}

func TestCoordinate_OutfitRoute(t *testing.T) {
	s := seededStore()
	s.PutWardrobeItem(models.WardrobeItem{
		ID: 1, UserID: 3, Name: "Grey Suit", Category: "jackets",
		ImageURL: "https://cdn.example.com/suit.jpg",
	})
	mock := llm.NewMock().Enqueue(`{
		"outfit_description": "A sharp business look anchored by your grey suit.",
		"items": [{"name": "Grey Suit", "category": "Outerwear", "image_url": "https://cdn.example.com/suit.jpg"}],
		"reasoning": "The suit reads formal without trying too hard.",
		"occasion": "business"
	}`)
	c, _ := newCoordinator(t, s, mock)

	env := c.Coordinate(context.Background(), "what should I wear to a business meeting", 3, 3)

	if env.AgentType != models.AgentOutfit {
		t.Fatalf("AgentType = %q, want outfit", env.AgentType)
	}
	outfit := env.Result.(models.Outfit)
	if outfit.Occasion != models.OccasionBusiness {
		t.Errorf("Occasion = %q, want business", outfit.Occasion)
	}
	if len(outfit.Items) != 1 || outfit.Items[0].ImageURL == "" {
		t.Errorf("items = %v", outfit.Items)
	}
}

func TestCoordinate_OutfitEmptyWardrobeAndCatalog(t *testing.T) {
	mock := llm.NewMock()
	c, _ := newCoordinator(t, store.NewMemoryStore(), mock)

	env := c.Coordinate(context.Background(), "style an outfit for me", 5, 5)

	outfit := env.Result.(models.Outfit)
	if len(outfit.Items) != 0 {
		t.Errorf("items = %v, want empty", outfit.Items)
	}
	if outfit.Occasion != models.OccasionCasual {
		t.Errorf("Occasion = %q, want casual", outfit.Occasion)
	}
	if outfit.OutfitDescription == "" || outfit.Reasoning == "" {
		t.Error("synthetic outfit must explain itself")
	}
	if calls := len(mock.Calls()); calls != 0 {
		t.Errorf("made %d LLM calls with nothing to style, want 0", calls)
	}
}

func TestCoordinate_OutfitRetriesExhaustedYieldsFallback(t *testing.T) {
	mock := llm.NewMock()
	mock.Respond = func(*llm.CompletionRequest) (string, error) {
		return `{"outfit_description":"x","items":[],"reasoning":"y"}`, nil
	}
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "what to wear tonight", 2, 2)

	outfit := env.Result.(models.Outfit)
	if len(outfit.Items) != 0 || outfit.Occasion != models.OccasionCasual {
		t.Errorf("fallback outfit = %+v", outfit)
	}
	if calls := len(mock.Calls()); calls != 4 {
		t.Errorf("made %d LLM calls, want 4 (first attempt plus three retries)", calls)
	}
}

func TestCoordinate_GeneralRoute(t *testing.T) {
	mock := llm.NewMock().Enqueue(`{"response":"Hello! I can help you shop or style outfits.","response_type":"greeting","confidence":0.95}`)
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "hello there", 1, 1)

	if env.AgentType != models.AgentGeneral {
		t.Fatalf("AgentType = %q, want general", env.AgentType)
	}
	resp := env.Result.(models.GeneralResponse)
	if resp.ResponseType != models.ResponseGreeting {
		t.Errorf("ResponseType = %q, want greeting", resp.ResponseType)
	}
	if resp.Confidence < 0.7 {
		t.Errorf("Confidence = %v, want >= 0.7", resp.Confidence)
	}
}

func TestCoordinate_GeneralRetriesExhaustedYieldsError(t *testing.T) {
	mock := llm.NewMock()
	mock.Respond = func(*llm.CompletionRequest) (string, error) {
		return "", errors.New("provider down")
	}
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "tell me about fashion", 1, 1)

	resp := env.Result.(models.GeneralResponse)
	if resp.ResponseType != models.ResponseError {
		t.Errorf("ResponseType = %q, want error", resp.ResponseType)
	}
	if calls := len(mock.Calls()); calls != 3 {
		t.Errorf("made %d LLM calls, want 3 (first attempt plus two retries)", calls)
	}
}

func TestCoordinate_HistoryFlowsIntoPrompt(t *testing.T) {
	mock := llm.NewMock().Enqueue(`{"response":"You mentioned jeans earlier.","response_type":"answer","confidence":0.9}`)
	c, h := newCoordinator(t, seededStore(), mock)

	ctx := context.Background()
	h.Append(ctx, 9, models.ChatTurn{Role: models.RoleUser, Content: "I bought jeans yesterday"})
	h.Append(ctx, 9, models.ChatTurn{Role: models.RoleAssistant, Content: "Nice choice!"})

	c.Coordinate(ctx, "what did I tell you before?", 9, 9)

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("made %d LLM calls, want 1", len(calls))
	}
	msgs := calls[0].Messages
	if len(msgs) != 3 {
		t.Fatalf("prompt carried %d messages, want history plus the new message", len(msgs))
	}
	if msgs[0].Content != "I bought jeans yesterday" || msgs[2].Content != "what did I tell you before?" {
		t.Errorf("prompt ordering wrong: %v", msgs)
	}
}

func TestCoordinate_TieBreakTokensCounted(t *testing.T) {
	// "buy" and "outfit" both match, so the classifier spends one LLM call
	// before the routed agent spends its own; both land on the envelope.
	mock := llm.NewMock().
		Enqueue(`{"route":"general"}`).
		Enqueue(`{"response":"Let me know what you are shopping for.","response_type":"answer","confidence":0.85}`)
	c, _ := newCoordinator(t, seededStore(), mock)

	env := c.Coordinate(context.Background(), "buy me a new outfit", 1, 1)

	if calls := len(mock.Calls()); calls != 2 {
		t.Fatalf("made %d LLM calls, want 2", calls)
	}
	if env.InputTokens != 20 || env.OutputTokens != 40 {
		t.Errorf("tokens = (%d, %d), want both calls counted (20, 40)", env.InputTokens, env.OutputTokens)
	}
	if env.TotalTokens != 60 {
		t.Errorf("TotalTokens = %d, want 60", env.TotalTokens)
	}
}

// panicHistory blows up on read to exercise the coordinator's recovery path.
type panicHistory struct{ history.Store }

func (panicHistory) Turns(context.Context, int64) ([]models.ChatTurn, error) {
	panic("history backend corrupted")
}

func TestCoordinate_PanicYieldsErrorEnvelope(t *testing.T) {
	mock := llm.NewMock()
	c := agents.NewCoordinator(seededStore(), panicHistory{history.NewMemoryStore()}, mock, testConfig())

	env := c.Coordinate(context.Background(), "hello", 1, 1)

	if env == nil {
		t.Fatal("Coordinate() returned nil envelope after panic")
	}
	if env.AgentType != models.AgentGeneral {
		t.Fatalf("AgentType = %q, want general", env.AgentType)
	}
	resp := env.Result.(models.GeneralResponse)
	if resp.ResponseType != models.ResponseError {
		t.Errorf("ResponseType = %q, want error", resp.ResponseType)
	}
	if env.ProcessingTimeMs < 0 {
		t.Errorf("ProcessingTimeMs = %d, want >= 0", env.ProcessingTimeMs)
	}
}

func TestCoordinate_HistoryReadFailureDegrades(t *testing.T) {
	mock := llm.NewMock().Enqueue(`{"response":"Happy to help anyway!","response_type":"answer","confidence":0.8}`)
	c := agents.NewCoordinator(seededStore(), failingHistory{}, mock, testConfig())

	env := c.Coordinate(context.Background(), "how are you", 1, 1)

	resp := env.Result.(models.GeneralResponse)
	if resp.ResponseType != models.ResponseAnswer {
		t.Errorf("ResponseType = %q, want answer despite history failure", resp.ResponseType)
	}
}

type failingHistory struct{}

func (failingHistory) Append(context.Context, int64, models.ChatTurn) error { return errors.New("down") }
func (failingHistory) Turns(context.Context, int64) ([]models.ChatTurn, error) {
	return nil, errors.New("down")
}
func (failingHistory) Clear(context.Context, int64) error { return errors.New("down") }
func (failingHistory) Ping(context.Context) error         { return errors.New("down") }
func (failingHistory) Close() error                       { return nil }
