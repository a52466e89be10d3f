package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
)

// Pipeline owns the generate-on-miss path: build a prompt, submit it to the
// completion service, parse and repair the reply, and persist the result as a
// generated recipe. It is invoked only when search yields no acceptable match.
type Pipeline struct {
	DB        *gorm.DB
	Completer Completer
}

// NewPipeline constructs a Pipeline over the given store and completer.
func NewPipeline(db *gorm.DB, c Completer) *Pipeline {
	return &Pipeline{DB: db, Completer: c}
}

// Generate produces, validates, and persists a new recipe for query.
// contextIngredients, when non-empty, constrain the generated recipe.
//
// Failure semantics:
//   - a transport failure surfaces as an error wrapping ErrService;
//   - an unusable completion surfaces as ErrGenerationFormat;
//   - in both cases nothing is persisted. The store gains at most one row per
//     call, and only a row that passed full validation.
func (p *Pipeline) Generate(ctx context.Context, query string, contextIngredients []string) (*domain.Recipe, error) {
	prompt := BuildPrompt(query, contextIngredients)

	text, err := p.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	recipe, err := ParseRecipe(text)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("completion not parsable as recipe")
		return nil, err
	}

	Repair(recipe)
	recipe.Source = domain.SourceGenerated

	if _, err := repo.InsertRecipe(ctx, p.DB, recipe); err != nil {
		if errors.Is(err, domain.ErrInvalidRecipe) {
			// repair could not salvage the completion; the store is untouched
			return nil, fmt.Errorf("%w: %v", ErrGenerationFormat, err)
		}
		return nil, err
	}
	log.Info().
		Str("recipe_id", recipe.ID).
		Str("name", recipe.Name).
		Str("category", recipe.Category).
		Msg("generated recipe persisted")
	return recipe, nil
}
