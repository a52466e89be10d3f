package search

import (
	"regexp"
	"strings"
)

// wordRE extracts letter/digit runs; everything else (punctuation, symbols)
// is stripped during normalization.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Normalize case-folds s, strips punctuation, and collapses whitespace so
// that "Turmeric-Latte!" and "turmeric latte" compare equal.
func Normalize(s string) string {
	return strings.Join(Tokenize(s), " ")
}

// Tokenize returns the normalized tokens of s in order, or nil when s holds
// no letters or digits.
func Tokenize(s string) []string {
	return wordRE.FindAllString(strings.ToLower(s), -1)
}

// tokenSet builds a membership set from normalized tokens.
func tokenSet(tokens []string) map[string]struct{} {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}

// withinOneEdit reports whether a and b are at Levenshtein distance 0 or 1.
// This is the misspelling tolerance used by the matcher; full edit-distance
// computation is unnecessary for a cutoff of one.
func withinOneEdit(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := len(a), len(b)
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	switch lb - la {
	case 0:
		// exactly one substitution allowed
		diff := 0
		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				diff++
				if diff > 1 {
					return false
				}
			}
		}
		return diff == 1
	case 1:
		// one insertion into a (equivalently one deletion from b)
		i, j := 0, 0
		skipped := false
		for i < la && j < lb {
			if a[i] == b[j] {
				i++
				j++
				continue
			}
			if skipped {
				return false
			}
			skipped = true
			j++
		}
		return true
	default:
		return false
	}
}
