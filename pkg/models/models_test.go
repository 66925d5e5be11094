package models_test

import (
	"testing"
	"time"

	"github.com/closetmind/assistant/pkg/models"
)

func TestNewEnvelope(t *testing.T) {
	result := models.GeneralResponse{
		Response:     "Hello! How can I help you today?",
		ResponseType: models.ResponseGreeting,
		Confidence:   0.95,
	}

	env := models.NewEnvelope(result, 250*time.Millisecond, 120, 45)

	if env.AgentType != models.AgentGeneral {
		t.Errorf("AgentType = %q, want %q", env.AgentType, models.AgentGeneral)
	}
	if env.ProcessingTimeMs != 250 {
		t.Errorf("ProcessingTimeMs = %d, want 250", env.ProcessingTimeMs)
	}
	if env.InputTokens != 120 || env.OutputTokens != 45 {
		t.Errorf("tokens = (%d, %d), want (120, 45)", env.InputTokens, env.OutputTokens)
	}
	if env.TotalTokens != 165 {
		t.Errorf("TotalTokens = %d, want 165", env.TotalTokens)
	}
}

func TestNewEnvelope_NegativeElapsedClamped(t *testing.T) {
	env := models.NewEnvelope(models.ProductList{}, -5*time.Millisecond, 0, 0)
	if env.ProcessingTimeMs != 0 {
		t.Errorf("ProcessingTimeMs = %d, want 0", env.ProcessingTimeMs)
	}
}

func TestNewEnvelope_AgentTypeMatchesResult(t *testing.T) {
	cases := []struct {
		result models.AgentResult
		want   models.AgentType
	}{
		{models.ProductList{}, models.AgentSearch},
		{models.Outfit{}, models.AgentOutfit},
		{models.GeneralResponse{}, models.AgentGeneral},
	}
	for _, tc := range cases {
		env := models.NewEnvelope(tc.result, time.Millisecond, 0, 0)
		if env.AgentType != tc.want {
			t.Errorf("NewEnvelope(%T).AgentType = %q, want %q", tc.result, env.AgentType, tc.want)
		}
	}
}

func TestScrubImageURLs(t *testing.T) {
	got := models.ScrubImageURLs([]string{
		"https://cdn.example.com/a.jpg",
		"",
		"   ",
		"  https://cdn.example.com/b.jpg  ",
	})
	want := []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}

	if len(got) != len(want) {
		t.Fatalf("ScrubImageURLs returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScrubImageURLs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScrubImageURLs_AllBlank(t *testing.T) {
	got := models.ScrubImageURLs([]string{"", "  ", "\t"})
	if got == nil {
		t.Fatal("ScrubImageURLs returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("ScrubImageURLs returned %d entries, want 0", len(got))
	}
}

func TestInStock(t *testing.T) {
	cases := []struct {
		name    string
		product models.CatalogProduct
		want    bool
	}{
		{"active with stock", models.CatalogProduct{IsActive: true, StockQuantity: 3}, true},
		{"active without stock", models.CatalogProduct{IsActive: true, StockQuantity: 0}, false},
		{"inactive with stock", models.CatalogProduct{IsActive: false, StockQuantity: 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.product.InStock(); got != tc.want {
				t.Errorf("InStock() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVocabularies(t *testing.T) {
	if !models.IsOutfitCategory("Footwear") {
		t.Error("IsOutfitCategory(Footwear) = false, want true")
	}
	if models.IsOutfitCategory("footwear") {
		t.Error("IsOutfitCategory is case-sensitive; lowercase should not match")
	}
	if !models.IsOccasion(models.OccasionBusiness) {
		t.Error("IsOccasion(business) = false, want true")
	}
	if models.IsOccasion("gala") {
		t.Error("IsOccasion(gala) = true, want false")
	}
	if !models.IsResponseType(models.ResponseClarification) {
		t.Error("IsResponseType(clarification) = false, want true")
	}
	if models.IsResponseType("unknown") {
		t.Error("IsResponseType(unknown) = true, want false")
	}
}
