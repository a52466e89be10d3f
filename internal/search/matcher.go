// Package search scores and ranks catalog recipes against a free-text query.
// It is deterministic, allocation-light, and free of I/O: the caller supplies
// a snapshot of the catalog and receives an ordered slice of matches.
//
// Scoring is a weighted sum over normalized tokens:
//
//   - an exact substring match of the whole normalized query inside the
//     normalized recipe name carries the highest weight;
//   - each query token found among the name or ingredient-name tokens
//     contributes a fixed weight;
//   - each query token found among the tags contributes a smaller weight;
//   - a query token within edit distance one of any recipe token contributes
//     a reduced partial weight, tolerating minor misspellings.
//
// Candidates below the caller's threshold are discarded; the threshold is the
// single precision/recall knob and never touches the ranking logic itself.
package search

import (
	"sort"
	"strings"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// Scoring weights. The threshold is a parameter of Search; these are not.
const (
	weightNameSubstring = 3.0
	weightIngredient    = 1.0
	weightTag           = 0.5
	weightFuzzy         = 0.25
)

// Match is a ranked recipe with its relevance score.
type Match struct {
	Recipe domain.Recipe
	Score  float64
}

// Search ranks recipes against query and returns at most topK matches with
// score >= threshold, highest score first. Ties are broken by most recent
// CreatedAt, then by ID ascending for full determinism.
//
// An empty or punctuation-only query yields nil: the catalog is never
// scanned, and generation must not be triggered for it.
func Search(recipes []domain.Recipe, query string, topK int, threshold float64) []Match {
	qTokens := Tokenize(query)
	if len(qTokens) == 0 || len(recipes) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = 3
	}
	qNorm := strings.Join(qTokens, " ")

	matches := make([]Match, 0, min(topK*4, len(recipes)))
	for i := range recipes {
		score := scoreRecipe(&recipes[i], qNorm, qTokens)
		if score < threshold || score == 0 {
			continue
		}
		matches = append(matches, Match{Recipe: recipes[i], Score: score})
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		if !matches[a].Recipe.CreatedAt.Equal(matches[b].Recipe.CreatedAt) {
			return matches[a].Recipe.CreatedAt.After(matches[b].Recipe.CreatedAt)
		}
		return matches[a].Recipe.ID < matches[b].Recipe.ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func scoreRecipe(r *domain.Recipe, qNorm string, qTokens []string) float64 {
	nameNorm := Normalize(r.Name)

	// searchable token sets: name + ingredient names, and tags
	core := Tokenize(r.Name)
	for _, ing := range r.Ingredients {
		core = append(core, Tokenize(ing.Name)...)
	}
	coreSet := tokenSet(core)

	var tags []string
	for _, tag := range r.Tags {
		tags = append(tags, Tokenize(tag)...)
	}
	tagSet := tokenSet(tags)

	score := 0.0
	if qNorm != "" && strings.Contains(nameNorm, qNorm) {
		score += weightNameSubstring
	}

	for _, qt := range qTokens {
		if _, ok := coreSet[qt]; ok {
			score += weightIngredient
			continue
		}
		if _, ok := tagSet[qt]; ok {
			score += weightTag
			continue
		}
		if fuzzyHit(qt, coreSet) || fuzzyHit(qt, tagSet) {
			score += weightFuzzy
		}
	}
	return score
}

func fuzzyHit(token string, set map[string]struct{}) bool {
	for t := range set {
		if withinOneEdit(token, t) {
			return true
		}
	}
	return false
}
