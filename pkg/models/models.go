// Package models defines the domain types shared across the ClosetMind
// assistant core: catalog and wardrobe entities, chat history turns, the
// structured results produced by each agent, and the uniform envelope the
// coordinator returns to the HTTP layer.
package models

import (
	"strings"
	"time"
)

// ── Chat History ─────────────────────────────────────────────

// Message roles within a chat.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatTurn is one stored message of a conversation. Turns are immutable and
// ordered by CreatedAt within a chat; the core only reads them, the HTTP
// layer appends them.
type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is the role/content pair sent to a language model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ── Wardrobe & Catalog ───────────────────────────────────────

// WardrobeItem is a single garment from a user's personal wardrobe.
// Read-only from the core's perspective.
type WardrobeItem struct {
	ID       int64    `json:"id"`
	UserID   int64    `json:"user_id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"image_url"`
	Category string   `json:"category"`
	Features []string `json:"features,omitempty"`
}

// CatalogProduct is a purchasable product from a store's catalog, joined
// with the owning store's name and city.
type CatalogProduct struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand,omitempty"`
	Description   string   `json:"description,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
	Features      []string `json:"features,omitempty"`
	StoreID       int64    `json:"store_id"`
	StoreName     string   `json:"store_name,omitempty"`
	StoreCity     string   `json:"store_city,omitempty"`
	StockQuantity int      `json:"stock_quantity"`
	Rating        float64  `json:"rating"`
	IsActive      bool     `json:"is_active"`
}

// InStock reports whether the product can currently be sold.
func (p *CatalogProduct) InStock() bool {
	return p.IsActive && p.StockQuantity > 0
}

// CatalogFilter narrows deterministic catalog searches.
type CatalogFilter struct {
	Query    string
	Category string
	Color    string
	MaxPrice float64
	Occasion string
	Limit    int
}

// ── Structured Results ───────────────────────────────────────

// Result size and length bounds enforced before an envelope is returned.
const (
	MaxSearchResults = 10
	MaxOutfitItems   = 8

	MinOutfitDescriptionLen = 20
	MaxOutfitDescriptionLen = 300
	MinOutfitReasoningLen   = 15
	MaxOutfitReasoningLen   = 200

	MinGeneralResponseLen = 5
	MaxGeneralResponseLen = 1000
)

// Product is one search hit as presented to the user. Price is preformatted
// with its currency symbol.
type Product struct {
	Name          string   `json:"name"`
	Price         string   `json:"price"`
	Description   string   `json:"description"`
	Link          string   `json:"link"`
	ImageURLs     []string `json:"image_urls"`
	OriginalPrice string   `json:"original_price,omitempty"`
	StoreName     string   `json:"store_name,omitempty"`
	StoreCity     string   `json:"store_city,omitempty"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	InStock       bool     `json:"in_stock"`
}

// ProductList is the catalog search agent's result.
type ProductList struct {
	Products    []Product `json:"products"`
	SearchQuery string    `json:"search_query"`
	TotalFound  int       `json:"total_found"`
}

// OutfitItem is one garment within a composed outfit. Category is one of the
// fixed outfit vocabulary values; ImageURL must be non-empty.
type OutfitItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

// OutfitCategories is the fixed garment vocabulary for outfit items.
var OutfitCategories = []string{
	"Tops", "Bottoms", "Outerwear", "Footwear", "Accessories", "Dresses", "Activewear",
}

// IsOutfitCategory reports whether c is in the fixed outfit vocabulary.
func IsOutfitCategory(c string) bool {
	for _, v := range OutfitCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Occasion values an outfit may target.
const (
	OccasionCasual   = "casual"
	OccasionFormal   = "formal"
	OccasionBusiness = "business"
	OccasionEvening  = "evening"
	OccasionSport    = "sport"
	OccasionWeekend  = "weekend"
	OccasionDate     = "date"
	OccasionWork     = "work"
)

// Occasions lists the valid outfit occasions.
var Occasions = []string{
	OccasionCasual, OccasionFormal, OccasionBusiness, OccasionEvening,
	OccasionSport, OccasionWeekend, OccasionDate, OccasionWork,
}

// IsOccasion reports whether o is a valid occasion value.
func IsOccasion(o string) bool {
	for _, v := range Occasions {
		if v == o {
			return true
		}
	}
	return false
}

// Outfit is the outfit recommendation agent's result.
type Outfit struct {
	OutfitDescription string       `json:"outfit_description"`
	Items             []OutfitItem `json:"items"`
	Reasoning         string       `json:"reasoning"`
	Occasion          string       `json:"occasion"`
}

// Response types a general answer may carry.
const (
	ResponseAnswer        = "answer"
	ResponseClarification = "clarification"
	ResponseSuggestion    = "suggestion"
	ResponseGreeting      = "greeting"
	ResponseError         = "error"
)

// ResponseTypes lists the valid general response types.
var ResponseTypes = []string{
	ResponseAnswer, ResponseClarification, ResponseSuggestion,
	ResponseGreeting, ResponseError,
}

// IsResponseType reports whether t is a valid response type.
func IsResponseType(t string) bool {
	for _, v := range ResponseTypes {
		if v == t {
			return true
		}
	}
	return false
}

// GeneralResponse is the general conversation agent's result.
type GeneralResponse struct {
	Response     string  `json:"response"`
	ResponseType string  `json:"response_type"`
	Confidence   float64 `json:"confidence"`
}

// ── Agent Envelope ───────────────────────────────────────────

// AgentType identifies which sub-agent produced a result.
type AgentType string

const (
	AgentSearch  AgentType = "search"
	AgentOutfit  AgentType = "outfit"
	AgentGeneral AgentType = "general"
)

// AgentResult is the tagged union of the three structured result shapes.
// Kind ties each variant to the agent type that must appear on the envelope.
type AgentResult interface {
	Kind() AgentType
}

func (ProductList) Kind() AgentType     { return AgentSearch }
func (Outfit) Kind() AgentType          { return AgentOutfit }
func (GeneralResponse) Kind() AgentType { return AgentGeneral }

// AgentEnvelope is the uniform wrapper returned once per coordinated
// request. Immutable after construction; AgentType always matches
// Result.Kind().
type AgentEnvelope struct {
	Result           AgentResult `json:"result"`
	AgentType        AgentType   `json:"agent_type"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	InputTokens      int64       `json:"input_tokens"`
	OutputTokens     int64       `json:"output_tokens"`
	TotalTokens      int64       `json:"total_tokens"`
}

// NewEnvelope wraps a result, stamping the matching agent type.
func NewEnvelope(result AgentResult, elapsed time.Duration, inTok, outTok int64) *AgentEnvelope {
	ms := elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &AgentEnvelope{
		Result:           result,
		AgentType:        result.Kind(),
		ProcessingTimeMs: ms,
		InputTokens:      inTok,
		OutputTokens:     outTok,
		TotalTokens:      inTok + outTok,
	}
}

// ScrubImageURLs drops blank and whitespace-only entries, trimming the rest.
func ScrubImageURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
