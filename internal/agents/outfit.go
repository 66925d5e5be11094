package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/closetmind/assistant/internal/history"
	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/schema"
	"github.com/closetmind/assistant/internal/store"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/rs/zerolog/log"
)

// candidateItem is one garment the model may place into the outfit, sourced
// from the wardrobe or, when that is empty, from the store catalog.
type candidateItem struct {
	Name     string
	Category string
	ImageURL string
	Features []string
}

// Catalog categories mapped into the fixed outfit vocabulary. Unknown
// categories fall back to Accessories.
var outfitCategoryAliases = map[string]string{
	"tops": "Tops", "shirts": "Tops", "t-shirts": "Tops", "tshirts": "Tops",
	"sweaters": "Tops", "hoodies": "Tops", "blouses": "Tops",
	"футболки": "Tops", "рубашки": "Tops", "топы": "Tops", "свитеры": "Tops", "худи": "Tops",
	"bottoms": "Bottoms", "pants": "Bottoms", "trousers": "Bottoms",
	"jeans": "Bottoms", "shorts": "Bottoms", "skirts": "Bottoms",
	"брюки": "Bottoms", "джинсы": "Bottoms", "шорты": "Bottoms", "юбки": "Bottoms",
	"outerwear": "Outerwear", "jackets": "Outerwear", "coats": "Outerwear",
	"куртки": "Outerwear", "пальто": "Outerwear",
	"footwear": "Footwear", "shoes": "Footwear", "sneakers": "Footwear", "boots": "Footwear",
	"обувь": "Footwear", "кроссовки": "Footwear", "ботинки": "Footwear",
	"dresses": "Dresses", "платья": "Dresses",
	"accessories": "Accessories", "bags": "Accessories", "hats": "Accessories",
	"аксессуары": "Accessories", "сумки": "Accessories", "головные уборы": "Accessories",
	"activewear": "Activewear", "sportswear": "Activewear", "спортивная одежда": "Activewear",
}

func mapOutfitCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if mapped, ok := outfitCategoryAliases[c]; ok {
		return mapped
	}
	if models.IsOutfitCategory(strings.TrimSpace(category)) {
		return strings.TrimSpace(category)
	}
	return "Accessories"
}

// OutfitAgent composes outfits for one user. Instances are cached per user
// by the agent cache; the cache is invalidated when the wardrobe changes.
type OutfitAgent struct {
	userID   int64
	store    store.Store
	provider llm.Provider
	retries  int
}

// NewOutfitAgent creates an outfit agent bound to a user.
func NewOutfitAgent(userID int64, s store.Store, provider llm.Provider, retries int) *OutfitAgent {
	if retries < 0 {
		retries = 0
	}
	return &OutfitAgent{userID: userID, store: s, provider: provider, retries: retries}
}

// Recommend composes an outfit for the request. It never returns an error:
// any failure, including an empty wardrobe and catalog, yields a synthetic
// Outfit with empty items and occasion "casual".
func (a *OutfitAgent) Recommend(ctx context.Context, request string, turns []models.ChatTurn) (models.Outfit, Usage) {
	var usage Usage

	pool, fromWardrobe := a.collectCandidates(ctx)
	if len(pool) == 0 {
		return emptyWardrobeOutfit(), usage
	}

	prompt := buildOutfitPrompt(request, pool, fromWardrobe, turns)
	messages := []models.ChatMessage{{Role: models.RoleUser, Content: prompt}}

	for attempt := 0; attempt <= a.retries; attempt++ {
		completion, err := a.provider.Complete(ctx, &llm.CompletionRequest{
			System:      outfitSystemPrompt,
			Messages:    messages,
			JSONOutput:  true,
			Temperature: 0,
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("outfit call failed")
			continue
		}
		usage.add(completion)

		outfit, err := parseOutfit(completion.Content)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("outfit rejected")
			continue
		}
		return outfit, usage
	}

	return fallbackOutfit(), usage
}

// collectCandidates loads the wardrobe pool, falling back to the store
// catalog when the wardrobe is empty or unreadable. The second return
// reports whether the pool came from the wardrobe.
func (a *OutfitAgent) collectCandidates(ctx context.Context) ([]candidateItem, bool) {
	items, err := a.store.UserWardrobe(ctx, a.userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", a.userID).Msg("wardrobe fetch failed, trying catalog")
		items = nil
	}

	var pool []candidateItem
	for _, item := range items {
		if strings.TrimSpace(item.ImageURL) == "" {
			continue
		}
		pool = append(pool, candidateItem{
			Name:     item.Name,
			Category: mapOutfitCategory(item.Category),
			ImageURL: strings.TrimSpace(item.ImageURL),
			Features: item.Features,
		})
	}
	if len(pool) > 0 {
		return pool, true
	}

	catalog, err := a.store.ActiveCatalog(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog fallback fetch failed")
		return nil, false
	}
	for i := range catalog {
		p := &catalog[i]
		images := models.ScrubImageURLs(p.ImageURLs)
		if len(images) == 0 {
			continue
		}
		pool = append(pool, candidateItem{
			Name:     p.Name,
			Category: mapOutfitCategory(p.Category),
			ImageURL: images[0],
			Features: p.Features,
		})
	}
	return pool, false
}

func buildOutfitPrompt(request string, pool []candidateItem, fromWardrobe bool, turns []models.ChatTurn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "STYLING REQUEST: %s\n\n", request)

	if fromWardrobe {
		fmt.Fprintf(&sb, "SHOPPER'S WARDROBE (%d items):\n", len(pool))
	} else {
		fmt.Fprintf(&sb, "STORE CATALOG ITEMS (%d items, the wardrobe is empty):\n", len(pool))
	}
	for i, item := range pool {
		fmt.Fprintf(&sb, "%d. %s | %s | %s", i+1, item.Name, item.Category, item.ImageURL)
		if len(item.Features) > 0 {
			fmt.Fprintf(&sb, " | %s", strings.Join(item.Features, ", "))
		}
		sb.WriteByte('\n')
	}

	if feedback := history.StylingFeedback(turns); len(feedback) > 0 {
		sb.WriteString("\nSTYLING FEEDBACK FROM THIS CONVERSATION:\n")
		for _, f := range feedback {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	return sb.String()
}

// parseOutfit validates and normalizes one model reply. A returned error
// requests a retry; silent repairs (dropping imageless items, truncating,
// defaulting the occasion) do not.
func parseOutfit(content string) (models.Outfit, error) {
	raw := extractJSON(content)
	if err := schema.Validate("outfit", raw); err != nil {
		return models.Outfit{}, err
	}

	var outfit models.Outfit
	if err := json.Unmarshal([]byte(raw), &outfit); err != nil {
		return models.Outfit{}, err
	}

	kept := make([]models.OutfitItem, 0, len(outfit.Items))
	hadItems := len(outfit.Items) > 0
	for _, item := range outfit.Items {
		if strings.TrimSpace(item.Name) == "" {
			return models.Outfit{}, errors.New("outfit item without a name")
		}
		item.ImageURL = strings.TrimSpace(item.ImageURL)
		if item.ImageURL == "" {
			// Dropped silently; only an emptied outfit forces a retry.
			continue
		}
		item.Category = mapOutfitCategory(item.Category)
		kept = append(kept, item)
		if len(kept) == models.MaxOutfitItems {
			break
		}
	}
	if hadItems && len(kept) == 0 {
		return models.Outfit{}, errors.New("every outfit item lacked an image")
	}
	outfit.Items = kept

	// Length bounds count characters, not bytes; half the catalog is Cyrillic.
	outfit.OutfitDescription = strings.TrimSpace(outfit.OutfitDescription)
	if n := utf8.RuneCountInString(outfit.OutfitDescription); n < models.MinOutfitDescriptionLen {
		return models.Outfit{}, fmt.Errorf("outfit description too short (%d chars)", n)
	}
	outfit.OutfitDescription = truncateRunes(outfit.OutfitDescription, models.MaxOutfitDescriptionLen)

	outfit.Reasoning = strings.TrimSpace(outfit.Reasoning)
	if n := utf8.RuneCountInString(outfit.Reasoning); n < models.MinOutfitReasoningLen {
		return models.Outfit{}, fmt.Errorf("outfit reasoning too short (%d chars)", n)
	}
	outfit.Reasoning = truncateRunes(outfit.Reasoning, models.MaxOutfitReasoningLen)

	if !models.IsOccasion(outfit.Occasion) {
		outfit.Occasion = models.OccasionCasual
	}
	return outfit, nil
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func emptyWardrobeOutfit() models.Outfit {
	return models.Outfit{
		OutfitDescription: "Your wardrobe is empty and no catalog items are available right now, so there is nothing to compose an outfit from.",
		Items:             []models.OutfitItem{},
		Reasoning:         "Add some clothing items to your wardrobe to get personalized outfit suggestions.",
		Occasion:          models.OccasionCasual,
	}
}

func fallbackOutfit() models.Outfit {
	return models.Outfit{
		OutfitDescription: "I could not put together an outfit this time. Please try again, or rephrase what you would like to wear.",
		Items:             []models.OutfitItem{},
		Reasoning:         "The styling attempt did not produce a usable outfit after several tries.",
		Occasion:          models.OccasionCasual,
	}
}
