package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/token"
)

func TestDetectPowerOfTwoSpacing(t *testing.T) {
	p := Detect([]float64{4, 8, 16, 32}, token.CategorySpacing)
	require.NotNil(t, p)
	assert.Equal(t, 4.0, p.BaseValue)
	assert.Equal(t, 2.0, p.Ratio)
	assert.Equal(t, []float64{4, 8, 16, 32}, p.Values)
}

func TestDetectNoPattern(t *testing.T) {
	assert.Nil(t, Detect([]float64{5, 14, 23, 91}, token.CategorySpacing))
}

func TestDetectRequiresThreeDistinctValues(t *testing.T) {
	assert.Nil(t, Detect([]float64{4, 8}, token.CategorySpacing))
	assert.Nil(t, Detect([]float64{4, 4, 8, 8}, token.CategorySpacing), "duplicates don't count")
	assert.Nil(t, Detect(nil, token.CategorySpacing))
}

func TestDetectIgnoresNonPositiveAndDuplicates(t *testing.T) {
	p := Detect([]float64{0, -4, 8, 4, 16, 8}, token.CategorySpacing)
	require.NotNil(t, p)
	assert.Equal(t, 4.0, p.BaseValue)
	assert.Equal(t, 2.0, p.Ratio)
	assert.Equal(t, []float64{4, 8, 16}, p.Values)
}

func TestDetectToleratesOffScaleValues(t *testing.T) {
	// 4, 8, 16, 32 plus one outlier: 3 of 4 consecutive ratios still match
	// 2x, above the 60% acceptance fraction.
	p := Detect([]float64{4, 8, 16, 32, 40}, token.CategorySpacing)
	require.NotNil(t, p)
	assert.Equal(t, 2.0, p.Ratio)
}

func TestDetectModularTypographyScale(t *testing.T) {
	// Octave scale: 16, 32, 64. The doubling ratio is far enough from the
	// smaller modular candidates to be unambiguous.
	p := Detect([]float64{16, 32, 64}, token.CategoryTypography)
	require.NotNil(t, p)
	assert.Equal(t, 16.0, p.BaseValue)
	assert.Equal(t, 2.0, p.Ratio)
}

func TestDetectCustomConsistentRatio(t *testing.T) {
	// Ratio 2.5 is in no candidate table but is perfectly consistent.
	p := Detect([]float64{4, 10, 25, 62.5}, token.CategorySpacing)
	require.NotNil(t, p)
	assert.Equal(t, 2.5, p.Ratio)
	assert.Equal(t, 4.0, p.BaseValue)
}
