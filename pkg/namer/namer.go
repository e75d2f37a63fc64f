// Package namer proposes human-readable token names from declared names,
// textual context, and value-derived heuristics.
package namer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/gnana997/tokensync/pkg/grouper"
	"github.com/gnana997/tokensync/pkg/token"
)

// contextKeywords is the ranked vocabulary scanned in surrounding source
// text. Earlier entries win when more than two match.
var contextKeywords = []string{
	"primary", "secondary", "accent", "brand", "background", "foreground",
	"surface", "muted", "button", "header", "footer", "nav", "sidebar",
	"card", "input", "badge", "link", "heading", "body", "text",
	"hover", "active", "focus", "disabled", "success", "warning",
	"error", "danger", "info", "border", "shadow",
}

// Confidence levels per naming strategy.
const (
	confDeclared   = 0.9
	confOneKeyword = 0.7
	confTwoKeyword = 0.85
	confShadeOnly  = 0.4
	confGeneric    = 0.2
)

// Namer assigns names within one inference run, deduplicating against the
// names it has already handed out.
type Namer struct {
	assigned map[string]bool
}

// New creates a namer for one run.
func New() *Namer {
	return &Namer{assigned: make(map[string]bool)}
}

// Suggest proposes a name and confidence for one occurrence. Strategies in
// priority order, first hit wins: declared name, context keywords, color
// shade, generic category-value. Every returned name is unique within the
// run.
func (n *Namer) Suggest(t token.ExtractedToken) (string, float64) {
	if name := normalizeDeclared(t.Name); name != "" {
		return n.claim(name), confDeclared
	}

	if name, conf := fromContext(t); name != "" {
		return n.claim(name), conf
	}

	if t.Category == token.CategoryColor {
		if q := shadeQualifier(t.Value); q != "" {
			return n.claim(q), confShadeOnly
		}
	}

	return n.claim(generic(t)), confGeneric
}

// claim deduplicates a candidate name by appending a numeric suffix.
func (n *Namer) claim(name string) string {
	if !n.assigned[name] {
		n.assigned[name] = true
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "-" + strconv.Itoa(i)
		if !n.assigned[candidate] {
			n.assigned[candidate] = true
			return candidate
		}
	}
}

// normalizeDeclared slugs a declared name, rejecting ones too short to
// mean anything ("x", "v2").
func normalizeDeclared(name string) string {
	s := slug.Make(name)
	if len(strings.TrimLeft(s, "-0123456789")) < 3 {
		return ""
	}
	return s
}

// fromContext scans the occurrence's surrounding text for ranked keywords
// and joins up to two of them into a slug. Color occurrences get a shade
// qualifier appended.
func fromContext(t token.ExtractedToken) (string, float64) {
	ctx := strings.ToLower(t.Context)
	var matched []string
	for _, kw := range contextKeywords {
		if strings.Contains(ctx, kw) {
			matched = append(matched, kw)
			if len(matched) == 2 {
				break
			}
		}
	}
	if len(matched) == 0 {
		return "", 0
	}

	name := strings.Join(matched, "-")
	if t.Category == token.CategoryColor {
		if q := shadeQualifier(t.Value); q != "" && !strings.Contains(name, q) {
			name += "-" + q
		}
	}

	conf := confOneKeyword
	if len(matched) == 2 {
		conf = confTwoKeyword
	}
	return name, conf
}

// shadeQualifier derives a light/dark hue slug from a color value, e.g.
// "blue-dark". Mid-lightness colors keep just the hue.
func shadeQualifier(value string) string {
	c, ok := token.ParseColor(value)
	if !ok {
		return ""
	}
	hue := grouper.HueName(c)
	_, _, l := c.Hsl()
	switch {
	case l < 0.3:
		return hue + "-dark"
	case l > 0.7:
		return hue + "-light"
	default:
		return hue
	}
}

// generic falls all the way back to category-value.
func generic(t token.ExtractedToken) string {
	v := slug.Make(t.Value)
	if len(v) > 24 {
		v = v[:24]
	}
	return fmt.Sprintf("%s-%s", t.Category, strings.Trim(v, "-"))
}
