package llm

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// promptTemplate instructs the service to answer in the exact labeled layout
// ParseRecipe understands. The section names double as the output schema.
const promptTemplate = `You are a professional chef creating detailed, practical recipes.

Create ONE new recipe answering the request below. Reply with nothing but the
recipe, using exactly this layout:

NAME: (recipe title)
CATEGORY: (one of: %s)
INGREDIENTS:
- (quantity) (unit) (ingredient), one per line, in prep order
STEPS:
1. (numbered, detailed preparation steps)
NUTRITION:
- (key: value) per line, keys from: %s
TAGS: (comma-separated functional-food properties, e.g. anti-inflammatory)
PREP TIME: (total time)
SERVINGS: (number)
DIFFICULTY: (easy/medium/hard)
TIPS:
- (2-3 short chef tips)

Request: %s`

// BuildPrompt renders the deterministic generation prompt for query. When the
// caller supplies ingredient constraints they are appended as a hard
// requirement; the same inputs always produce the same prompt bytes.
func BuildPrompt(query string, contextIngredients []string) string {
	req := strings.TrimSpace(query)
	if len(contextIngredients) > 0 {
		req += fmt.Sprintf("\nThe recipe must use these ingredients: %s.",
			strings.Join(contextIngredients, ", "))
	}
	return fmt.Sprintf(promptTemplate, categoryList(), nutrientList(), req)
}

func categoryList() string { return strings.Join(domain.Categories, ", ") }
func nutrientList() string { return strings.Join(domain.Nutrients, ", ") }
