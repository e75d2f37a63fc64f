package extractor

import (
	"regexp"
	"strings"

	"github.com/gnana997/tokensync/pkg/token"
)

// Category inference is rule-based. Declared names are matched against
// keyword patterns; bare literals fall back to shape-based inference.
// The tables live here, separate from file-level orchestration, so each
// entry can be unit-tested on its own.

// nameRule maps a declared-name pattern to a category. Order matters:
// the first matching rule wins, so the more specific patterns go first.
type nameRule struct {
	pattern  *regexp.Regexp
	category token.Category
}

var nameRules = []nameRule{
	{regexp.MustCompile(`(?i)shadow`), token.CategoryShadow},
	{regexp.MustCompile(`(?i)radius|border`), token.CategoryBorder},
	{regexp.MustCompile(`(?i)transition|duration|animation|ease|delay`), token.CategoryAnimation},
	{regexp.MustCompile(`(?i)breakpoint|screen[-_]?(sm|md|lg|xl)`), token.CategoryBreakpoint},
	{regexp.MustCompile(`(?i)z[-_]?index|layer`), token.CategoryZIndex},
	{regexp.MustCompile(`(?i)color|colour|bg|background|accent|fill|stroke|tint`), token.CategoryColor},
	{regexp.MustCompile(`(?i)font|size|weight|line[-_]?height|letter[-_]?spacing|text`), token.CategoryTypography},
	{regexp.MustCompile(`(?i)margin|padding|gap|space|spacing|inset`), token.CategorySpacing},
	{regexp.MustCompile(`(?i)grid|column|width|height|container`), token.CategoryLayout},
	{regexp.MustCompile(`(?i)focus[-_]?ring|contrast|a11y`), token.CategoryAccessibility},
}

// CategoryForName infers a category from a declared variable/setting name.
func CategoryForName(name string) (token.Category, bool) {
	for _, r := range nameRules {
		if r.pattern.MatchString(name) {
			return r.category, true
		}
	}
	return "", false
}

var (
	colorShapePattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|rgba?\(.*\)|hsla?\(.*\))$`)
	unitShapePattern  = regexp.MustCompile(`^-?\d*\.?\d+(px|rem|em|%|vw|vh|pt)$`)
)

// CategoryForValue infers a category from the shape of a bare literal.
func CategoryForValue(value string) (token.Category, bool) {
	v := strings.TrimSpace(value)
	if colorShapePattern.MatchString(v) {
		return token.CategoryColor, true
	}
	if unitShapePattern.MatchString(v) {
		return token.CategorySpacing, true
	}
	return "", false
}

// cssPropertyCategory maps regular CSS property names to categories. Only
// properties whose literal values are worth harvesting appear here.
var cssPropertyCategory = map[string]token.Category{
	"color":            token.CategoryColor,
	"background":       token.CategoryColor,
	"background-color": token.CategoryColor,
	"border-color":     token.CategoryColor,
	"outline-color":    token.CategoryColor,
	"fill":             token.CategoryColor,
	"stroke":           token.CategoryColor,
	"caret-color":      token.CategoryColor,

	"font-size":      token.CategoryTypography,
	"font-family":    token.CategoryTypography,
	"font-weight":    token.CategoryTypography,
	"line-height":    token.CategoryTypography,
	"letter-spacing": token.CategoryTypography,

	"margin":         token.CategorySpacing,
	"margin-top":     token.CategorySpacing,
	"margin-right":   token.CategorySpacing,
	"margin-bottom":  token.CategorySpacing,
	"margin-left":    token.CategorySpacing,
	"padding":        token.CategorySpacing,
	"padding-top":    token.CategorySpacing,
	"padding-right":  token.CategorySpacing,
	"padding-bottom": token.CategorySpacing,
	"padding-left":   token.CategorySpacing,
	"gap":            token.CategorySpacing,
	"row-gap":        token.CategorySpacing,
	"column-gap":     token.CategorySpacing,

	"border-radius": token.CategoryBorder,
	"border-width":  token.CategoryBorder,

	"box-shadow":  token.CategoryShadow,
	"text-shadow": token.CategoryShadow,

	"transition":          token.CategoryAnimation,
	"transition-duration": token.CategoryAnimation,
	"animation-duration":  token.CategoryAnimation,

	"z-index": token.CategoryZIndex,
}

// CategoryForProperty infers a category for a hardcoded literal from the
// CSS property it is assigned to.
func CategoryForProperty(property string) (token.Category, bool) {
	cat, ok := cssPropertyCategory[strings.ToLower(strings.TrimSpace(property))]
	return cat, ok
}
