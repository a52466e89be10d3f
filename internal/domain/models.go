// Package domain defines the persistence model for recipes, the category and
// nutrient vocabularies, and the validation rules the store enforces before
// anything is persisted. These types are mapped with GORM and form the core
// data layer of the recipe assistant.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Recipe provenance values. Source is assigned at creation and never changes.
const (
	SourceStored    = "stored"    // loaded from seed data
	SourceGenerated = "generated" // produced by the generation pipeline
)

// CategoryUncategorized is the fallback category applied by the generation
// repair step when the completion names a category outside the vocabulary.
const CategoryUncategorized = "uncategorized"

// Categories is the closed category vocabulary. Recipes outside this set are
// rejected on insert.
var Categories = []string{
	"breakfast",
	"main",
	"dessert",
	"snack",
	"beverage",
	CategoryUncategorized,
}

// Nutrients is the known nutrient-key vocabulary. Nutrition maps may be
// partial but must not carry keys outside this set.
var Nutrients = []string{
	"calories",
	"protein_g",
	"carbs_g",
	"fat_g",
	"fiber_g",
	"sugar_g",
	"sodium_mg",
}

// ErrInvalidRecipe is returned (wrapped) when a recipe violates the insert
// invariants: empty ingredients or steps, or a category/nutrient key outside
// the known vocabularies. A recipe failing validation is never persisted.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Ingredient is one (name, quantity, unit) entry of a recipe. The slice order
// is meaningful (prep order) and is preserved on round-trip.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// Recipe is the unit of culinary knowledge. Collection-valued fields are
// stored as JSON columns; the row itself is immutable after insert, and
// corrections are modeled as a new recipe with a new ID.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: recipe title, non-empty.
//   - Category: one of Categories.
//   - Ingredients: ordered (name, quantity, unit) triples, never empty.
//   - Steps: ordered instructions, never empty.
//   - Nutrition: nutrient name → value, keys restricted to Nutrients.
//   - Tags: deduplicated functional-food tags (set semantics).
//   - Source: "stored" or "generated", immutable provenance.
//   - PrepTime / Servings / Difficulty / Tips: optional prep metadata.
//   - CreatedAt: assigned on insert, immutable.
type Recipe struct {
	ID          string             `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string             `json:"name"        gorm:"type:varchar(255);not null;index"`
	Category    string             `json:"category"    gorm:"type:varchar(32);not null;index"`
	Ingredients []Ingredient       `json:"ingredients" gorm:"serializer:json;not null"`
	Steps       []string           `json:"steps"       gorm:"serializer:json;not null"`
	Nutrition   map[string]float64 `json:"nutrition,omitempty"  gorm:"serializer:json"`
	Tags        []string           `json:"tags,omitempty"       gorm:"serializer:json"`
	Source      string             `json:"source"      gorm:"type:varchar(16);not null;check:source IN ('stored','generated')"`
	PrepTime    string             `json:"prep_time,omitempty"  gorm:"type:varchar(64)"`
	Servings    int                `json:"servings,omitempty"`
	Difficulty  string             `json:"difficulty,omitempty" gorm:"type:varchar(32)"`
	Tips        []string           `json:"tips,omitempty"       gorm:"serializer:json"`
	CreatedAt   time.Time          `json:"created_at"  gorm:"index"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// Validate checks the insert invariants. It returns an error wrapping
// ErrInvalidRecipe describing the first violation found, or nil.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidRecipe)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: no ingredients", ErrInvalidRecipe)
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient %d has no name", ErrInvalidRecipe, i+1)
		}
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidRecipe)
	}
	for i, step := range r.Steps {
		if strings.TrimSpace(step) == "" {
			return fmt.Errorf("%w: step %d is blank", ErrInvalidRecipe, i+1)
		}
	}
	if !ValidCategory(r.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRecipe, r.Category)
	}
	for k := range r.Nutrition {
		if !ValidNutrient(k) {
			return fmt.Errorf("%w: unknown nutrient %q", ErrInvalidRecipe, k)
		}
	}
	switch r.Source {
	case SourceStored, SourceGenerated:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidRecipe, r.Source)
	}
	return nil
}

// Normalize canonicalizes the set-valued fields: tags are trimmed,
// lower-cased, deduplicated and sorted; blank tips are dropped. Ordered
// fields (ingredients, steps) are left untouched.
func (r *Recipe) Normalize() {
	r.Tags = dedupeSorted(r.Tags)
	r.Tips = trimNonEmpty(r.Tips)
}

// ValidCategory reports whether c is part of the category vocabulary.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidNutrient reports whether k is part of the nutrient vocabulary.
func ValidNutrient(k string) bool {
	for _, v := range Nutrients {
		if v == k {
			return true
		}
	}
	return false
}

func dedupeSorted(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func trimNonEmpty(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
