package apply

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/token"
)

func TestAnalyzeImpactCountsAndRisk(t *testing.T) {
	var big strings.Builder
	big.WriteString(":root { --color-primary: #3b82f6; }\n")
	for i := 0; i < 11; i++ {
		big.WriteString(".x { color: var(--color-primary); }\n")
	}

	store := files.NewMemStore(map[string]string{
		"assets/huge.css":  big.String(),
		"assets/small.css": ".btn { background: var(--color-primary); }\n",
		"assets/other.css": ".btn { color: #fff; }\n",
	})

	analysis, err := AnalyzeImpact(context.Background(), store, []token.TokenChange{
		{Type: token.ChangeRename, TokenName: "color-primary", NewValue: "color-brand"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, analysis.Files, 2)
	assert.Equal(t, 13, analysis.TotalMatches)

	byPath := map[string]FileImpact{}
	for _, f := range analysis.Files {
		byPath[f.Path] = f
	}
	assert.Equal(t, RiskHigh, byPath["assets/huge.css"].Risk)
	assert.Equal(t, 12, byPath["assets/huge.css"].Matches)
	assert.Equal(t, RiskLow, byPath["assets/small.css"].Risk)

	assert.Contains(t, analysis.Summary, "2 files affected")
	assert.Contains(t, analysis.Summary, "13 instances")
}

func TestAnalyzeImpactNoMatches(t *testing.T) {
	store := files.NewMemStore(map[string]string{"a.css": ".a { color: red; }\n"})

	analysis, err := AnalyzeImpact(context.Background(), store, []token.TokenChange{
		{Type: token.ChangeReplace, TokenName: "x", OldValue: "#123456", NewValue: "#654321"},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, analysis.Files)
	assert.Equal(t, "no files affected", analysis.Summary)
}

func TestAnalyzeImpactCountsDeleteReferences(t *testing.T) {
	store := files.NewMemStore(map[string]string{
		"assets/theme.css": ":root { --accent: #ff0000; }\n.btn { color: var(--accent); }\n",
	})

	analysis, err := AnalyzeImpact(context.Background(), store, []token.TokenChange{
		{Type: token.ChangeDelete, TokenName: "accent", OldValue: "#ff0000"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, analysis.Files, 1)
	assert.Equal(t, 2, analysis.TotalMatches)
}

func TestRiskForCount(t *testing.T) {
	assert.Equal(t, RiskLow, riskForCount(2))
	assert.Equal(t, RiskMedium, riskForCount(3))
	assert.Equal(t, RiskMedium, riskForCount(10))
	assert.Equal(t, RiskHigh, riskForCount(11))
}

func TestCompileMatchersRejectsBadChanges(t *testing.T) {
	_, err := compileMatchers([]token.TokenChange{{Type: token.ChangeReplace, TokenName: "x"}})
	require.Error(t, err)

	_, err = compileMatchers([]token.TokenChange{{Type: token.ChangeRename, TokenName: "x"}})
	require.Error(t, err)

	_, err = compileMatchers([]token.TokenChange{{Type: "mutate", TokenName: "x"}})
	require.Error(t, err)
}
