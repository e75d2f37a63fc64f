package grouper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gnana997/tokensync/pkg/token"
)

// groupTypography buckets by the first font-family token, case-insensitive
// with quotes stripped. Numeric-only values (sizes, weights) get their own
// bucket since they carry no family information.
func (g *Grouper) groupTypography(toks []token.ExtractedToken) []token.TokenGroup {
	buckets := make(map[string][]token.ExtractedToken)
	var order []string

	put := func(key string, t token.ExtractedToken) {
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], t)
	}

	for _, t := range toks {
		if _, ok := token.ParseMagnitude(t.Value); ok {
			put("numeric", t)
			continue
		}
		put(firstFamily(t.Value), t)
	}

	groups := make([]token.TokenGroup, 0, len(order))
	for _, key := range order {
		pattern := fmt.Sprintf("font family %q", key)
		if key == "numeric" {
			pattern = "numeric typography values (sizes, weights)"
		}
		groups = append(groups, token.TokenGroup{
			ID:       uuid.NewString(),
			Category: token.CategoryTypography,
			Tokens:   buckets[key],
			Pattern:  pattern,
		})
	}
	return groups
}

// firstFamily extracts the first font-family token from a value like
// `"Helvetica Neue", Arial, sans-serif`.
func firstFamily(value string) string {
	first := value
	if i := strings.IndexByte(value, ','); i >= 0 {
		first = value[:i]
	}
	first = strings.Trim(strings.TrimSpace(first), `'"`)
	return strings.ToLower(first)
}
