package namer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/tokensync/pkg/token"
)

func TestSuggestPrefersDeclaredName(t *testing.T) {
	n := New()
	name, conf := n.Suggest(token.ExtractedToken{
		Name:     "Header Background",
		Category: token.CategoryColor,
		Value:    "#ffffff",
	})
	assert.Equal(t, "header-background", name)
	assert.Equal(t, 0.9, conf)
}

func TestSuggestRejectsMeaninglessDeclaredName(t *testing.T) {
	n := New()
	name, conf := n.Suggest(token.ExtractedToken{
		Name:     "x2",
		Category: token.CategorySpacing,
		Value:    "8px",
	})
	assert.NotEqual(t, "x2", name, "too short to mean anything")
	assert.Less(t, conf, 0.9)
}

func TestSuggestFromContextKeywords(t *testing.T) {
	n := New()
	name, conf := n.Suggest(token.ExtractedToken{
		Category: token.CategorySpacing,
		Value:    "16px",
		Context:  ".button { padding: 16px; } /* primary action */",
	})
	assert.Equal(t, "primary-button", name)
	assert.Equal(t, 0.85, conf, "two keywords matched")
}

func TestSuggestContextColorGetsShadeQualifier(t *testing.T) {
	n := New()
	name, conf := n.Suggest(token.ExtractedToken{
		Category: token.CategoryColor,
		Value:    "#172554", // dark blue
		Context:  "header { background: #172554; }",
	})
	assert.Contains(t, name, "background")
	assert.Contains(t, name, "blue-dark")
	assert.GreaterOrEqual(t, conf, 0.7)
}

func TestSuggestColorShadeFallback(t *testing.T) {
	n := New()
	name, conf := n.Suggest(token.ExtractedToken{
		Category: token.CategoryColor,
		Value:    "#bfdbfe", // light blue, no context
	})
	assert.Equal(t, "blue-light", name)
	assert.Equal(t, 0.4, conf)
}

func TestSuggestGenericFallback(t *testing.T) {
	n := New()
	name, conf := n.Suggest(token.ExtractedToken{
		Category: token.CategorySpacing,
		Value:    "13px",
	})
	assert.Equal(t, "spacing-13px", name)
	assert.Equal(t, 0.2, conf)
}

func TestSuggestDeduplicatesWithinRun(t *testing.T) {
	n := New()
	tok := token.ExtractedToken{Name: "accent color", Category: token.CategoryColor, Value: "#f00"}

	first, _ := n.Suggest(tok)
	second, _ := n.Suggest(tok)
	third, _ := n.Suggest(tok)

	assert.Equal(t, "accent-color", first)
	assert.Equal(t, "accent-color-2", second)
	assert.Equal(t, "accent-color-3", third)
}
