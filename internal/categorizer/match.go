package categorizer

import (
	"strings"
	"unicode/utf8"

	"shoplist/internal/shopping"

	"github.com/agnivade/levenshtein"
)

// Match resolves typed input to one of categories. It tries an exact id,
// then an exact name, then a case-insensitive name, and finally the closest
// name by edit distance when it is close enough for the input's length.
func Match(input string, categories []shopping.Category) (shopping.Category, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return shopping.Category{}, false
	}

	for _, c := range categories {
		if c.ID == input {
			return c, true
		}
	}
	for _, c := range categories {
		if c.Name == input {
			return c, true
		}
	}

	lowered := strings.ToLower(input)
	for _, c := range categories {
		if strings.ToLower(c.Name) == lowered {
			return c, true
		}
	}

	limit := maxDistance(lowered)
	best, bestDist := -1, limit+1
	for i, c := range categories {
		d := levenshtein.ComputeDistance(lowered, strings.ToLower(c.Name))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return shopping.Category{}, false
	}
	return categories[best], true
}

// maxDistance is the number of edits tolerated for an input of this length.
// Very short inputs must match exactly.
func maxDistance(s string) int {
	n := utf8.RuneCountInString(s)
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}
