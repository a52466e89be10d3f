// Package seed loads the initial recipe catalog from a directory of Markdown
// files. Each file holds one recipe: a "# Title" heading followed by "##"
// sections for ingredients, steps, nutrition, tags and tips. Files whose
// title already exists in the catalog are skipped, so the importer can run on
// every startup without creating duplicates.
package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
)

var (
	bulletRE = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	qtyRE    = regexp.MustCompile(`^(\d+(?:[.,/]\d+)?)\s*`)
)

// ImportDir parses every *.md file in dir and inserts the recipes that are
// not already present. It returns the number of recipes inserted. A missing
// directory is not an error: the catalog simply starts empty.
func ImportDir(ctx context.Context, db *gorm.DB, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("dir", dir).Msg("seed directory not found, starting with empty catalog")
			return 0, nil
		}
		return 0, err
	}

	inserted := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return inserted, err
		}

		r := parseMarkdown(string(content))
		if r == nil {
			log.Warn().Str("file", e.Name()).Msg("seed file has no title, skipped")
			continue
		}

		if _, err := repo.FindRecipeByName(ctx, db, r.Name); err == nil {
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return inserted, err
		}

		if _, err := repo.InsertRecipe(ctx, db, r); err != nil {
			if errors.Is(err, domain.ErrInvalidRecipe) {
				log.Warn().Err(err).Str("file", e.Name()).Msg("seed recipe rejected")
				continue
			}
			return inserted, err
		}
		inserted++
	}

	log.Info().Int("inserted", inserted).Str("dir", dir).Msg("seed import complete")
	return inserted, nil
}

// parseMarkdown converts one Markdown document into a recipe, or nil when the
// document has no "# Title" heading. Section headings are matched loosely:
// "## Preparation" and "## Instructions" both feed the steps list.
func parseMarkdown(content string) *domain.Recipe {
	r := &domain.Recipe{
		Category: domain.CategoryUncategorized,
		Source:   domain.SourceStored,
	}

	section := ""
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "# "); ok {
			if r.Name == "" {
				r.Name = strings.TrimSpace(rest)
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "## "); ok {
			section = classifySection(rest)
			continue
		}

		item := bulletRE.ReplaceAllString(line, "")
		switch section {
		case "ingredients":
			r.Ingredients = append(r.Ingredients, parseIngredient(item))
		case "steps":
			r.Steps = append(r.Steps, item)
		case "nutrition":
			if key, val, ok := parseNutritionLine(item); ok {
				if r.Nutrition == nil {
					r.Nutrition = make(map[string]float64)
				}
				r.Nutrition[key] = val
			}
		case "tags":
			for _, t := range strings.Split(item, ",") {
				if t = strings.TrimSpace(t); t != "" {
					r.Tags = append(r.Tags, t)
				}
			}
		case "tips":
			r.Tips = append(r.Tips, item)
		case "category":
			if c := strings.ToLower(item); domain.ValidCategory(c) {
				r.Category = c
			}
		case "preptime":
			if r.PrepTime == "" {
				r.PrepTime = item
			}
		case "servings":
			if n, err := strconv.Atoi(strings.Fields(item)[0]); err == nil {
				r.Servings = n
			}
		case "difficulty":
			if r.Difficulty == "" {
				r.Difficulty = strings.ToLower(item)
			}
		}
	}

	if r.Name == "" {
		return nil
	}
	return r
}

func classifySection(heading string) string {
	h := strings.ToLower(strings.TrimSpace(heading))
	switch {
	case strings.Contains(h, "ingredient"):
		return "ingredients"
	case strings.Contains(h, "step"), strings.Contains(h, "preparation"), strings.Contains(h, "instruction"):
		return "steps"
	case strings.Contains(h, "nutrition"):
		return "nutrition"
	case strings.Contains(h, "tag"):
		return "tags"
	case strings.Contains(h, "tip"):
		return "tips"
	case strings.Contains(h, "categor"):
		return "category"
	case strings.Contains(h, "prep time"), strings.Contains(h, "time"):
		return "preptime"
	case strings.Contains(h, "serving"), strings.Contains(h, "portion"):
		return "servings"
	case strings.Contains(h, "difficulty"):
		return "difficulty"
	}
	return ""
}

// parseIngredient splits a leading quantity and unit off an ingredient line.
// Lines without a leading number keep the whole text as the name.
func parseIngredient(item string) domain.Ingredient {
	m := qtyRE.FindStringSubmatch(item)
	if m == nil {
		return domain.Ingredient{Name: item}
	}
	qty := parseQuantity(m[1])
	rest := strings.TrimSpace(item[len(m[0]):])
	fields := strings.Fields(rest)
	if len(fields) >= 2 && knownUnit(fields[0]) {
		return domain.Ingredient{
			Name:     strings.Join(fields[1:], " "),
			Quantity: qty,
			Unit:     strings.ToLower(fields[0]),
		}
	}
	if rest == "" {
		return domain.Ingredient{Name: item}
	}
	return domain.Ingredient{Name: rest, Quantity: qty}
}

func parseQuantity(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d
		}
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

var units = map[string]struct{}{
	"g": {}, "kg": {}, "mg": {}, "ml": {}, "l": {}, "cl": {},
	"cup": {}, "cups": {}, "tbsp": {}, "tsp": {}, "oz": {}, "lb": {},
	"pinch": {}, "clove": {}, "cloves": {}, "slice": {}, "slices": {},
	"piece": {}, "pieces": {}, "can": {}, "cans": {},
}

func knownUnit(s string) bool {
	_, ok := units[strings.ToLower(s)]
	return ok
}

// parseNutritionLine reads "calories: 420" style lines, tolerating a unit
// suffix after the number. Keys outside the nutrient vocabulary are dropped.
func parseNutritionLine(item string) (string, float64, bool) {
	key, val, ok := strings.Cut(item, ":")
	if !ok {
		return "", 0, false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "_")
	if !domain.ValidNutrient(key) {
		return "", 0, false
	}
	m := qtyRE.FindStringSubmatch(strings.TrimSpace(val))
	if m == nil {
		return "", 0, false
	}
	return key, parseQuantity(m[1]), true
}
