package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// The parser accepts the labeled layout BuildPrompt asks for, with slack for
// the deviations completions actually produce: markdown heading markers,
// varying case, alternate bullet markers, "1)" style numbering, and unit
// suffixes on nutrition values. Text that cannot be decomposed into a name,
// ingredients, and steps is rejected with ErrGenerationFormat.

type section int

const (
	secNone section = iota
	secIngredients
	secSteps
	secNutrition
	secTips
)

var (
	bulletRE = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	numberRE = regexp.MustCompile(`^\d+(?:[.,]\d+)?(?:/\d+)?$`)
)

// headingLabels are the recognized section labels, longest first so that
// "prep time" wins over "time" and "chef tips" over "tips".
var headingLabels = []string{
	"nutritional information",
	"nutrition estimate",
	"prep time",
	"total time",
	"chef tips",
	"ingredients",
	"preparation",
	"instructions",
	"directions",
	"difficulty",
	"nutrition",
	"servings",
	"portions",
	"category",
	"method",
	"recipe",
	"serves",
	"steps",
	"title",
	"notes",
	"name",
	"tags",
	"time",
	"tips",
}

// ParseRecipe decomposes completion text into a Recipe. Optional sections
// (nutrition, tags, prep metadata) may be absent; the required fields may
// not. The returned recipe is unrepaired: the category and nutrient keys are
// whatever the completion produced.
func ParseRecipe(text string) (*domain.Recipe, error) {
	r := &domain.Recipe{Nutrition: map[string]float64{}}
	cur := secNone

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if heading, rest, ok := matchHeading(line); ok {
			switch heading {
			case "name", "recipe", "title":
				r.Name = strings.TrimSpace(rest)
				cur = secNone
			case "category":
				r.Category = strings.ToLower(strings.TrimSpace(rest))
				cur = secNone
			case "ingredients":
				cur = secIngredients
			case "steps", "preparation", "instructions", "method", "directions":
				cur = secSteps
			case "nutrition", "nutrition estimate", "nutritional information":
				cur = secNutrition
			case "tags":
				r.Tags = append(r.Tags, splitCSV(rest)...)
				cur = secNone
			case "prep time", "total time", "time":
				r.PrepTime = strings.TrimSpace(rest)
				cur = secNone
			case "servings", "portions", "serves":
				r.Servings = firstInt(rest)
				cur = secNone
			case "difficulty":
				r.Difficulty = strings.ToLower(strings.TrimSpace(rest))
				cur = secNone
			case "tips", "chef tips", "notes":
				cur = secTips
			}
			continue
		}

		appendContent(r, cur, line)
	}

	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("%w: no recipe name found", ErrGenerationFormat)
	}
	if len(r.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: no ingredients section", ErrGenerationFormat)
	}
	if len(r.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps section", ErrGenerationFormat)
	}
	if len(r.Nutrition) == 0 {
		r.Nutrition = nil
	}
	return r, nil
}

// Repair applies the best-effort fixes that keep partially valid generated
// content usable: unknown categories fall back to uncategorized, nutrient
// keys are canonicalized and unknown ones dropped, tags are deduplicated via
// Normalize, and the name is title-cased. Partial content is worth keeping;
// what Repair cannot fix, domain validation still rejects.
func Repair(r *domain.Recipe) {
	r.Name = titleCaser.String(strings.ToLower(strings.TrimSpace(r.Name)))

	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if !domain.ValidCategory(r.Category) {
		r.Category = domain.CategoryUncategorized
	}

	if len(r.Nutrition) > 0 {
		fixed := make(map[string]float64, len(r.Nutrition))
		for k, v := range r.Nutrition {
			ck := canonicalNutrient(k)
			if domain.ValidNutrient(ck) {
				fixed[ck] = v
			}
		}
		if len(fixed) == 0 {
			fixed = nil
		}
		r.Nutrition = fixed
	}

	ings := r.Ingredients[:0]
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) != "" {
			ings = append(ings, ing)
		}
	}
	r.Ingredients = ings

	r.Normalize()
}

var titleCaser = cases.Title(language.English)

// nutrientAliases maps the spellings completions use to the vocabulary keys.
var nutrientAliases = map[string]string{
	"kcal":          "calories",
	"energy":        "calories",
	"protein":       "protein_g",
	"proteins":      "protein_g",
	"carbs":         "carbs_g",
	"carbohydrates": "carbs_g",
	"fat":           "fat_g",
	"fats":          "fat_g",
	"fiber":         "fiber_g",
	"fibre":         "fiber_g",
	"sugar":         "sugar_g",
	"sugars":        "sugar_g",
	"sodium":        "sodium_mg",
}

func canonicalNutrient(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "").Replace(k)
	if alias, ok := nutrientAliases[k]; ok {
		return alias
	}
	return k
}

// matchHeading reports whether line is a section heading and returns its
// lower-cased label plus any inline value after the colon. Markdown heading
// markers and bold decoration around the label are tolerated; a recognized
// label must stand alone or be followed by a colon, so ordinary prose never
// switches sections.
func matchHeading(line string) (heading, rest string, ok bool) {
	t := strings.Trim(line, "#* \t")
	for _, label := range headingLabels {
		if len(t) < len(label) || !strings.EqualFold(t[:len(label)], label) {
			continue
		}
		tail := strings.TrimLeft(t[len(label):], "* \t")
		if tail == "" {
			return label, "", true
		}
		if strings.HasPrefix(tail, ":") {
			return label, strings.Trim(tail[1:], "* \t"), true
		}
	}
	return "", "", false
}

func appendContent(r *domain.Recipe, cur section, line string) {
	item := strings.TrimSpace(bulletRE.ReplaceAllString(line, ""))
	if item == "" {
		return
	}
	switch cur {
	case secIngredients:
		r.Ingredients = append(r.Ingredients, parseIngredient(item))
	case secSteps:
		r.Steps = append(r.Steps, item)
	case secNutrition:
		if k, v, ok := parseNutritionLine(item); ok {
			r.Nutrition[k] = v
		}
	case secTips:
		r.Tips = append(r.Tips, item)
	}
}

// parseIngredient extracts (quantity, unit, name) from lines like
// "2 cups rolled oats" or "1/2 tsp turmeric". Lines without a leading
// quantity fall back to a bare ingredient name.
func parseIngredient(item string) domain.Ingredient {
	fields := strings.Fields(item)
	if len(fields) >= 2 && numberRE.MatchString(fields[0]) {
		qty := parseQuantity(fields[0])
		if len(fields) >= 3 {
			return domain.Ingredient{
				Name:     strings.Join(fields[2:], " "),
				Quantity: qty,
				Unit:     strings.ToLower(fields[1]),
			}
		}
		return domain.Ingredient{Name: fields[1], Quantity: qty}
	}
	return domain.Ingredient{Name: item}
}

func parseQuantity(s string) float64 {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d
		}
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseNutritionLine handles "calories: 320", "protein: 12 g" and similar.
func parseNutritionLine(item string) (string, float64, bool) {
	key, val, ok := strings.Cut(item, ":")
	if !ok {
		return "", 0, false
	}
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return "", 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(key), f, true
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstInt(s string) int {
	for _, f := range strings.Fields(s) {
		if n, err := strconv.Atoi(strings.Trim(f, ".,")); err == nil {
			return n
		}
	}
	return 0
}
