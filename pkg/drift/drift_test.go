package drift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
)

func testRegistry(t *testing.T) registry.Store {
	t.Helper()
	ctx := context.Background()
	reg := registry.NewMemoryStore()
	for _, tok := range []*registry.Token{
		{ProjectID: "p1", Name: "color-primary", Category: token.CategoryColor, Value: "#3B82F6"},
		{ProjectID: "p1", Name: "spacing-base", Category: token.CategorySpacing, Value: "8px"},
	} {
		require.NoError(t, reg.CreateToken(ctx, tok))
	}
	return reg
}

func findByValue(items []Item, value string) *Item {
	for i := range items {
		if items[i].Value == value {
			return &items[i]
		}
	}
	return nil
}

func TestDetectFileClassifiesMatches(t *testing.T) {
	reg := testRegistry(t)
	detector := NewDetector(reg, nil)

	content := []byte(`.hero {
  color: #3b82f6;
  background: #2563eb;
  border-color: #15803d;
  padding: 8px;
}
`)
	items, err := detector.DetectFile(context.Background(), "p1", "assets/hero.css", content)
	require.NoError(t, err)

	exact := findByValue(items, "#3b82f6")
	require.NotNil(t, exact)
	assert.Equal(t, MatchExact, exact.Match)
	require.NotNil(t, exact.MatchedToken)
	assert.Equal(t, "color-primary", exact.MatchedToken.Name)
	assert.Equal(t, 2, exact.LineNumber)

	near := findByValue(items, "#2563eb")
	require.NotNil(t, near)
	assert.Equal(t, MatchNear, near.Match)
	assert.Equal(t, "color-primary", near.MatchedToken.Name)

	hardcoded := findByValue(items, "#15803d")
	require.NotNil(t, hardcoded)
	assert.Equal(t, MatchHardcoded, hardcoded.Match)
	assert.Nil(t, hardcoded.MatchedToken)

	exactSpacing := findByValue(items, "8px")
	require.NotNil(t, exactSpacing)
	assert.Equal(t, MatchExact, exactSpacing.Match)
	assert.Equal(t, "spacing-base", exactSpacing.MatchedToken.Name)
}

func TestDetectFileSkipsDeclaredRegistryNames(t *testing.T) {
	reg := testRegistry(t)
	detector := NewDetector(reg, nil)

	// A declaration of the token itself is not drift.
	content := []byte(":root { --color-primary: #3b82f6; }\n.x { color: #3b82f6; }\n")
	items, err := detector.DetectFile(context.Background(), "p1", "assets/theme.css", content)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].LineNumber)
}

func TestDetectFileNumericNearBand(t *testing.T) {
	reg := testRegistry(t)
	detector := NewDetector(reg, nil)

	// 9px is 12.5% off 8px (near); 16px is 100% off (hardcoded).
	content := []byte(".a { padding: 9px; }\n.b { margin: 16px; }\n")
	items, err := detector.DetectFile(context.Background(), "p1", "a.css", content)
	require.NoError(t, err)

	near := findByValue(items, "9px")
	require.NotNil(t, near)
	assert.Equal(t, MatchNear, near.Match)
	assert.Equal(t, "spacing-base", near.MatchedToken.Name)

	far := findByValue(items, "16px")
	require.NotNil(t, far)
	assert.Equal(t, MatchHardcoded, far.Match)
}

func TestCategoriesComparable(t *testing.T) {
	assert.True(t, CategoriesComparable(token.CategoryColor, token.CategoryColor))
	assert.False(t, CategoriesComparable(token.CategoryColor, token.CategorySpacing))
	assert.True(t, CategoriesComparable(token.CategorySpacing, token.CategoryBorder))
	assert.True(t, CategoriesComparable(token.CategoryTypography, token.CategorySpacing))
	assert.False(t, CategoriesComparable(token.CategoryShadow, token.CategorySpacing))
}
