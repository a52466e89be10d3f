// Package services – AssistantService
//
// This file implements AssistantService, the application-level component that
// answers culinary questions. It validates the incoming query, records the
// user turn on the session ledger, ranks the stored catalog for a match, and
// falls back to the generation pipeline when nothing in the catalog clears
// the relevance threshold. Every answered turn, successful or not, is
// appended to the ledger so that an exported transcript reflects the full
// exchange.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include the session identifier and query where applicable.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/llm"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
	"github.com/tbourn/go-recipe-assistant/internal/search"
	"github.com/tbourn/go-recipe-assistant/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Generator produces and persists a brand-new recipe for a query. It is
// satisfied by *llm.Pipeline and stubbed in tests.
type Generator interface {
	Generate(ctx context.Context, query string, contextIngredients []string) (*domain.Recipe, error)
}

// Outcome is the result of answering a single query.
type Outcome struct {
	Recipe    *domain.Recipe
	Score     float64
	Generated bool
}

// AssistantService coordinates catalog search, recipe generation and the
// per-session conversation ledger.
type AssistantService struct {
	DB        *gorm.DB
	Generator Generator
	Sessions  *session.Registry

	Threshold float64
	TopK      int

	// Optional guard
	MaxQueryRunes int
}

// Ask answers a query within the given session. It first looks for a stored
// recipe whose score clears the threshold; on a miss it asks the generator
// for a new one. The user turn is recorded before the catalog is consulted,
// and an assistant turn is recorded for every path that produces a reply,
// including generation failures.
func (s *AssistantService) Ask(ctx context.Context, sessionID, query string) (*Outcome, error) {
	tr := otel.Tracer("services/AssistantService")
	ctx, span := tr.Start(ctx, "Ask",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("query", query),
		),
	)
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.MaxQueryRunes > 0 && utf8.RuneCountInString(query) > s.MaxQueryRunes {
		return nil, ErrQueryTooLong
	}

	ledger, _ := s.Sessions.Get(sessionID)
	if err := ledger.Append(session.ChatMessage{
		Role:      session.RoleUser,
		Content:   query,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	snapshot, err := repo.AllRecipes(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	matches := search.Search(snapshot, query, s.topK(), s.Threshold)
	if len(matches) > 0 {
		best := matches[0].Recipe
		s.recordAnswer(ledger, foundReply(&best), best.ID)
		return &Outcome{Recipe: &best, Score: matches[0].Score, Generated: false}, nil
	}

	recipe, err := s.Generator.Generate(ctx, query, nil)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrService):
			s.recordAnswer(ledger, "I could not reach the recipe service just now. Please try again shortly.", "")
			return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
		case errors.Is(err, llm.ErrGenerationFormat):
			s.recordAnswer(ledger, "I could not come up with a usable recipe for that. Could you rephrase or name a dish?", "")
			return nil, fmt.Errorf("%w: %v", ErrNoRecipe, err)
		default:
			return nil, err
		}
	}

	s.recordAnswer(ledger, generatedReply(recipe), recipe.ID)
	return &Outcome{Recipe: recipe, Generated: true}, nil
}

// ExportSession renders the session transcript as a document, inlining the
// current catalog state of every referenced recipe.
func (s *AssistantService) ExportSession(ctx context.Context, sessionID string) ([]byte, error) {
	tr := otel.Tracer("services/AssistantService")
	ctx, span := tr.Start(ctx, "ExportSession",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	ledger, ok := s.Sessions.Lookup(sessionID)
	if !ok || ledger.Len() == 0 {
		return nil, ErrSessionNotFound
	}

	doc := ledger.Export(func(id string) *domain.Recipe {
		r, err := repo.GetRecipe(ctx, s.DB, id)
		if err != nil {
			return nil
		}
		return r
	})
	return doc, nil
}

// ListCategories returns the distinct categories present in the catalog.
func (s *AssistantService) ListCategories(ctx context.Context) ([]string, error) {
	tr := otel.Tracer("services/AssistantService")
	ctx, span := tr.Start(ctx, "ListCategories")
	defer span.End()

	return repo.ListCategories(ctx, s.DB)
}

func (s *AssistantService) topK() int {
	if s.TopK <= 0 {
		return 5
	}
	return s.TopK
}

// recordAnswer appends the assistant turn. The timestamp is taken after the
// user turn within the same call, so an ordering rejection cannot occur here.
func (s *AssistantService) recordAnswer(ledger *session.Ledger, content, recipeID string) {
	_ = ledger.Append(session.ChatMessage{
		Role:      session.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
		RecipeRef: recipeID,
	})
}

func foundReply(r *domain.Recipe) string {
	return fmt.Sprintf("I found %s in the catalog. It is filed under %s.", r.Name, r.Category)
}

func generatedReply(r *domain.Recipe) string {
	return fmt.Sprintf("I did not have a match on file, so here is a freshly written recipe for %s. It has been saved for next time.", r.Name)
}
