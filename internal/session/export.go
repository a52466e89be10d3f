package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// RecipeResolver looks up a referenced recipe for inlining. Returning nil is
// not an error: the reference is weak and the export simply omits the inline.
type RecipeResolver func(id string) *domain.Recipe

// Export serializes the full session to a human-readable markdown document:
// a header with title and start time, then each turn with its role label,
// timestamp, content, and any referenced recipe inlined in full. The output
// is a pure function of ledger state, so exporting twice without appends
// yields byte-identical documents.
func (l *Ledger) Export(resolve RecipeResolver) []byte {
	var b strings.Builder

	title := l.title
	if title == "" {
		title = "Recipe Session"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Started: %s\n\n", l.started.Format(time.RFC3339))

	for _, msg := range l.messages {
		switch msg.Role {
		case RoleUser:
			fmt.Fprintf(&b, "## Question (%s)\n\n", msg.Timestamp.Format(time.RFC3339))
		default:
			fmt.Fprintf(&b, "## Chef's Answer (%s)\n\n", msg.Timestamp.Format(time.RFC3339))
		}
		b.WriteString(strings.TrimRight(msg.Content, "\n"))
		b.WriteString("\n\n")

		if msg.RecipeRef != "" && resolve != nil {
			if r := resolve(msg.RecipeRef); r != nil {
				writeRecipe(&b, r)
			}
		}
		if msg.Role == RoleAssistant {
			b.WriteString("---\n\n")
		}
	}
	return []byte(b.String())
}

// writeRecipe renders a recipe block in the catalog's canonical text layout.
func writeRecipe(b *strings.Builder, r *domain.Recipe) {
	fmt.Fprintf(b, "RECIPE: %s\n\n", strings.ToUpper(r.Name))
	fmt.Fprintf(b, "CATEGORY: %s\n\n", r.Category)

	b.WriteString("INGREDIENTS:\n")
	for _, ing := range r.Ingredients {
		b.WriteString("- " + formatIngredient(ing) + "\n")
	}
	b.WriteString("\nSTEPS:\n")
	for i, step := range r.Steps {
		fmt.Fprintf(b, "%d. %s\n", i+1, step)
	}

	if len(r.Nutrition) > 0 {
		b.WriteString("\nNUTRITION:\n")
		keys := make([]string, 0, len(r.Nutrition))
		for k := range r.Nutrition {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "- %s: %g\n", k, r.Nutrition[k])
		}
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(b, "\nTAGS: %s\n", strings.Join(r.Tags, ", "))
	}
	if len(r.Tips) > 0 {
		b.WriteString("\nTIPS:\n")
		for _, tip := range r.Tips {
			b.WriteString("- " + tip + "\n")
		}
	}
	b.WriteString("\n")
}

func formatIngredient(ing domain.Ingredient) string {
	switch {
	case ing.Quantity != 0 && ing.Unit != "":
		return fmt.Sprintf("%g %s %s", ing.Quantity, ing.Unit, ing.Name)
	case ing.Quantity != 0:
		return fmt.Sprintf("%g %s", ing.Quantity, ing.Name)
	default:
		return ing.Name
	}
}
