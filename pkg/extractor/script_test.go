package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/token"
)

func TestScriptConstBinding(t *testing.T) {
	js := []byte("const primaryColor = '#3b82f6';\nconst basePadding = '16px';\n")
	toks := NewScriptExtractor(nil).Extract("theme.js", js)
	require.Len(t, toks, 2)

	assert.Equal(t, "primaryColor", toks[0].Name)
	assert.Equal(t, token.CategoryColor, toks[0].Category)
	assert.Equal(t, "#3b82f6", toks[0].Value)
	assert.Equal(t, 1, toks[0].LineNumber)

	assert.Equal(t, "basePadding", toks[1].Name)
	assert.Equal(t, token.CategorySpacing, toks[1].Category)
	assert.Equal(t, 2, toks[1].LineNumber)
}

func TestScriptObjectKeyBinding(t *testing.T) {
	js := []byte("export default {\n  accentColor: '#ff6b35',\n  title: 'Checkout',\n};\n")
	toks := NewScriptExtractor(nil).Extract("config.ts", js)

	require.Len(t, toks, 1, "string literals without a design-name or design-shape are skipped")
	assert.Equal(t, "accentColor", toks[0].Name)
	assert.Equal(t, "#ff6b35", toks[0].Value)
	assert.Equal(t, 2, toks[0].LineNumber)
}

func TestScriptBareColorLiteral(t *testing.T) {
	js := []byte("ctx.fillStyle = okay ? '#22c55e' : computeColor();\n")
	toks := NewScriptExtractor(nil).Extract("canvas.js", js)

	require.NotEmpty(t, toks)
	found := false
	for _, tok := range toks {
		if tok.Value == "#22c55e" {
			assert.Equal(t, token.CategoryColor, tok.Category)
			found = true
		}
	}
	assert.True(t, found)
}

func TestScriptValueDedupAcrossPatterns(t *testing.T) {
	// The same literal must not be reported by both the binding pattern
	// and the bare-color pattern.
	js := []byte("const brandColor = '#111827';\n")
	toks := NewScriptExtractor(nil).Extract("brand.js", js)
	require.Len(t, toks, 1)
	assert.Equal(t, "brandColor", toks[0].Name)
}

func TestCategoryForName(t *testing.T) {
	tests := []struct {
		name string
		want token.Category
	}{
		{"color-primary", token.CategoryColor},
		{"header_bg", token.CategoryColor},
		{"font-size-lg", token.CategoryTypography},
		{"spacing-4", token.CategorySpacing},
		{"radius-sm", token.CategoryBorder},
		{"shadow-md", token.CategoryShadow},
		{"transition-fast", token.CategoryAnimation},
		{"z-index-modal", token.CategoryZIndex},
		{"breakpoint-md", token.CategoryBreakpoint},
	}
	for _, tt := range tests {
		got, ok := CategoryForName(tt.name)
		require.True(t, ok, "name %q", tt.name)
		assert.Equal(t, tt.want, got, "name %q", tt.name)
	}

	_, ok := CategoryForName("enabled")
	assert.False(t, ok)
}

func TestCategoryForValue(t *testing.T) {
	cat, ok := CategoryForValue("#3b82f6")
	require.True(t, ok)
	assert.Equal(t, token.CategoryColor, cat)

	cat, ok = CategoryForValue("1.5rem")
	require.True(t, ok)
	assert.Equal(t, token.CategorySpacing, cat)

	_, ok = CategoryForValue("Welcome")
	assert.False(t, ok)
}
