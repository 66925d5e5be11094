// Package schema holds the JSON Schema documents for the three structured
// result shapes and validates raw model output against them before any
// semantic normalization happens. Structural failures are what drive the
// agents' retry loops.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ProductListSchema validates the catalog search result shape.
const ProductListSchema = `{
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "price": {"type": "string"},
          "description": {"type": "string"},
          "link": {"type": "string"},
          "image_urls": {"type": "array", "items": {"type": "string"}},
          "original_price": {"type": "string"},
          "store_name": {"type": "string"},
          "store_city": {"type": "string"},
          "sizes": {"type": "array", "items": {"type": "string"}},
          "colors": {"type": "array", "items": {"type": "string"}},
          "in_stock": {"type": "boolean"}
        }
      }
    },
    "search_query": {"type": "string"},
    "total_found": {"type": "integer"}
  }
}`

// OutfitSchema validates the outfit recommendation shape. Length and
// vocabulary bounds are deliberately looser here than the final contract;
// the outfit agent normalizes what it can and retries only on structure it
// cannot repair.
const OutfitSchema = `{
  "type": "object",
  "required": ["outfit_description", "items", "reasoning"],
  "properties": {
    "outfit_description": {"type": "string", "minLength": 1},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "category": {"type": "string"},
          "image_url": {"type": "string"}
        }
      }
    },
    "reasoning": {"type": "string", "minLength": 1},
    "occasion": {"type": "string"}
  }
}`

// GeneralResponseSchema validates the general conversation shape.
const GeneralResponseSchema = `{
  "type": "object",
  "required": ["response"],
  "properties": {
    "response": {"type": "string", "minLength": 1},
    "response_type": {"type": "string"},
    "confidence": {"type": "number"}
  }
}`

var compiled = map[string]*gojsonschema.Schema{}

func init() {
	for name, doc := range map[string]string{
		"product_list":     ProductListSchema,
		"outfit":           OutfitSchema,
		"general_response": GeneralResponseSchema,
	} {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
		compiled[name] = s
	}
}

// Validate checks raw JSON against the named schema. Returns a single error
// aggregating every violation.
func Validate(name, raw string) error {
	s, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	result, err := s.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("schema %s: %s", name, strings.Join(msgs, "; "))
}
