package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/closetmind/assistant/internal/llm"
	"github.com/closetmind/assistant/internal/schema"
	"github.com/closetmind/assistant/internal/store"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/rs/zerolog/log"
)

// Usage accumulates token counts across the LLM calls an agent made while
// serving one request.
type Usage struct {
	Input  int64
	Output int64
}

func (u *Usage) add(c *llm.Completion) {
	u.Input += c.InputTokens
	u.Output += c.OutputTokens
}

// SearchAgent finds catalog products matching a free-text query. The primary
// strategy hands the model the full rendered catalog and lets it select
// relevant items; the deterministic SQL-predicate search is the fallback
// when the model path fails or its picks cannot be matched back.
type SearchAgent struct {
	store    store.CatalogStore
	provider llm.Provider
	retries  int
}

// NewSearchAgent creates a catalog search agent.
func NewSearchAgent(s store.CatalogStore, provider llm.Provider, retries int) *SearchAgent {
	if retries < 0 {
		retries = 0
	}
	return &SearchAgent{store: s, provider: provider, retries: retries}
}

// Search returns matching products. It never returns an error: any internal
// failure yields an empty ProductList with the original query preserved.
func (a *SearchAgent) Search(ctx context.Context, query string, history []models.ChatMessage) (models.ProductList, Usage) {
	var usage Usage

	catalog, err := a.store.ActiveCatalog(ctx)
	if err != nil {
		log.Error().Err(err).Msg("catalog load failed")
		return emptyProductList(query), usage
	}
	if len(catalog) == 0 {
		return emptyProductList(query), usage
	}

	// Candidate products built straight from the database rows so that
	// links, prices and image URLs survive the round trip through the model.
	candidates := make(map[string]models.Product, len(catalog))
	for i := range catalog {
		p := productFromCatalog(&catalog[i])
		candidates[strings.ToLower(p.Name)] = p
	}

	if picked, ok := a.llmSelect(ctx, query, catalog, candidates, history, &usage); ok {
		return finishProductList(picked, query), usage
	}

	// Deterministic fallback.
	found, err := a.store.SearchCatalog(ctx, models.CatalogFilter{
		Query: query,
		Limit: models.MaxSearchResults,
	})
	if err != nil {
		log.Error().Err(err).Msg("fallback catalog search failed")
		return emptyProductList(query), usage
	}

	products := make([]models.Product, 0, len(found))
	for i := range found {
		products = append(products, productFromCatalog(&found[i]))
	}
	return finishProductList(products, query), usage
}

// llmSelect runs the full-catalog semantic selection with the agent's retry
// budget. Returns false when the budget is exhausted or nothing the model
// picked could be matched back to the catalog.
func (a *SearchAgent) llmSelect(ctx context.Context, query string, catalog []models.CatalogProduct, candidates map[string]models.Product, history []models.ChatMessage, usage *Usage) ([]models.Product, bool) {
	prompt := fmt.Sprintf("USER QUERY: %s\n\n%s\n\nPick at most %d relevant items.",
		query, renderCatalog(catalog), models.MaxSearchResults)

	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: prompt})

	for attempt := 0; attempt <= a.retries; attempt++ {
		completion, err := a.provider.Complete(ctx, &llm.CompletionRequest{
			System:      searchSystemPrompt,
			Messages:    messages,
			JSONOutput:  true,
			Temperature: 0,
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("catalog selection call failed")
			continue
		}
		usage.add(completion)

		raw := extractJSON(completion.Content)
		if err := schema.Validate("product_list", raw); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("catalog selection failed validation")
			continue
		}

		var reply models.ProductList
		if err := json.Unmarshal([]byte(raw), &reply); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("catalog selection unmarshal failed")
			continue
		}

		// Match the model's picks back to database-built products; the
		// model only contributes the selection and its order.
		var picked []models.Product
		for _, p := range reply.Products {
			if match, ok := candidates[strings.ToLower(strings.TrimSpace(p.Name))]; ok {
				picked = append(picked, match)
			}
		}
		if len(picked) == 0 && len(reply.Products) > 0 {
			log.Warn().Int("attempt", attempt).Msg("no catalog selection matched the database")
			continue
		}
		return picked, true
	}
	return nil, false
}

// finishProductList enforces the output contract: cap at 10, drop duplicate
// (name, link) pairs keeping the first occurrence, scrub image URLs and drop
// products left without a single valid image, then recount.
func finishProductList(products []models.Product, query string) models.ProductList {
	seen := make(map[string]bool, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		key := p.Name + "\x00" + p.Link
		if seen[key] {
			continue
		}
		seen[key] = true

		p.ImageURLs = models.ScrubImageURLs(p.ImageURLs)
		if len(p.ImageURLs) == 0 {
			continue
		}
		out = append(out, p)
		if len(out) == models.MaxSearchResults {
			break
		}
	}
	return models.ProductList{
		Products:    out,
		SearchQuery: query,
		TotalFound:  len(out),
	}
}

func emptyProductList(query string) models.ProductList {
	return models.ProductList{
		Products:    []models.Product{},
		SearchQuery: query,
		TotalFound:  0,
	}
}

// productFromCatalog converts a database row to the presentation shape.
func productFromCatalog(p *models.CatalogProduct) models.Product {
	out := models.Product{
		Name:        p.Name,
		Price:       formatTenge(p.Price),
		Description: p.Description,
		Link:        fmt.Sprintf("/products/%d", p.ID),
		ImageURLs:   models.ScrubImageURLs(p.ImageURLs),
		StoreName:   p.StoreName,
		StoreCity:   p.StoreCity,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		InStock:     p.StockQuantity > 0,
	}
	if out.Description == "" {
		out.Description = "Стильная вещь из каталога"
	}
	if out.Sizes == nil {
		out.Sizes = []string{}
	}
	if out.Colors == nil {
		out.Colors = []string{}
	}
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
		out.OriginalPrice = formatTenge(*p.OriginalPrice)
	}
	return out
}

// renderCatalog produces the textual catalog the model selects from,
// mirroring the presentation shoppers see in the store.
func renderCatalog(catalog []models.CatalogProduct) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FULL CATALOG (%d items):\n\n", len(catalog))
	for i := range catalog {
		p := &catalog[i]

		price := formatTenge(p.Price)
		if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
			price += fmt.Sprintf(" (was %s)", formatTenge(*p.OriginalPrice))
		}

		fmt.Fprintf(&sb, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&sb, "   Price: %s\n", price)
		fmt.Fprintf(&sb, "   Category: %s\n", p.Category)
		if p.Brand != "" {
			fmt.Fprintf(&sb, "   Brand: %s\n", p.Brand)
		}
		if p.Description != "" {
			fmt.Fprintf(&sb, "   Description: %s\n", p.Description)
		}
		if len(p.Sizes) > 0 {
			fmt.Fprintf(&sb, "   Sizes: %s\n", strings.Join(p.Sizes, ", "))
		}
		if len(p.Colors) > 0 {
			fmt.Fprintf(&sb, "   Colors: %s\n", strings.Join(p.Colors, ", "))
		}
		if p.StoreName != "" {
			fmt.Fprintf(&sb, "   Store: %s, %s\n", p.StoreName, p.StoreCity)
		}
		if len(p.Features) > 0 {
			fmt.Fprintf(&sb, "   Features: %s\n", strings.Join(p.Features, ", "))
		}
		fmt.Fprintf(&sb, "   Rating: %.1f/5.0\n\n", p.Rating)
	}
	return sb.String()
}

// formatTenge renders a price like ₸12,500.
func formatTenge(v float64) string {
	whole := strconv.FormatInt(int64(v+0.5), 10)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var sb strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		sb.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(whole[i : i+3])
	}

	out := "₸" + sb.String()
	if neg {
		out = "-" + out
	}
	return out
}
