package drift

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
)

// Suggestion proposes replacing one hardcoded occurrence with a token
// reference.
type Suggestion struct {
	HardcodedValue       string  `json:"hardcoded_value"`
	LineNumber           int     `json:"line_number"`
	SuggestedToken       string  `json:"suggested_token"`
	SuggestedReplacement string  `json:"suggested_replacement"`
	Confidence           float64 `json:"confidence"`
	Reason               string  `json:"reason"`
}

// minConfidence is the floor under which suggestions are dropped.
const minConfidence = 0.3

// Generator scores drift items against the registry and emits replacement
// suggestions.
type Generator struct {
	registry registry.Store
	logger   *slog.Logger
}

// NewGenerator builds a Generator.
func NewGenerator(reg registry.Store, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{registry: reg, logger: logger}
}

// Suggest finds the best-scoring registry match for every drift item and
// emits suggestions above the confidence floor, sorted by descending
// confidence. An empty registry yields an empty result, not an error.
func (g *Generator) Suggest(ctx context.Context, projectID string, items []Item) ([]Suggestion, error) {
	known, err := g.registry.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetch registry tokens: %w", err)
	}
	if len(known) == 0 {
		return nil, nil
	}

	var out []Suggestion
	for _, item := range items {
		best, confidence, reason := bestMatch(item, known)
		if best == nil || confidence < minConfidence {
			continue
		}
		out = append(out, Suggestion{
			HardcodedValue:       item.Value,
			LineNumber:           item.LineNumber,
			SuggestedToken:       best.Name,
			SuggestedReplacement: Replacement(best.Name, item.Context),
			Confidence:           confidence,
			Reason:               reason,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].LineNumber < out[j].LineNumber
	})
	return out, nil
}

// bestMatch scores every category-compatible token and keeps the winner.
func bestMatch(item Item, known []*registry.Token) (*registry.Token, float64, string) {
	norm := token.NormalizeValue(item.Category, item.Value)

	var best *registry.Token
	bestScore := 0.0
	bestReason := ""

	for _, reg := range known {
		if !CategoriesComparable(item.Category, reg.Category) {
			continue
		}

		if token.NormalizeValue(reg.Category, reg.Value) == norm {
			return reg, 1.0, fmt.Sprintf("exact value match for %s", reg.Name)
		}

		dist, ok := distance(item.Category, item.Value, reg.Value)
		if !ok {
			continue
		}
		score, reason := scoreDistance(item.Category, dist, reg)
		if score > bestScore {
			best, bestScore, bestReason = reg, score, reason
		}
	}
	return best, bestScore, bestReason
}

// scoreDistance maps a distance to a confidence band.
func scoreDistance(cat token.Category, dist float64, reg *registry.Token) (float64, string) {
	if cat == token.CategoryColor {
		switch {
		case dist <= 10:
			return 0.9, fmt.Sprintf("color within ΔE %.1f of %s", dist, reg.Name)
		case dist <= 30:
			return 0.7, fmt.Sprintf("color within ΔE %.1f of %s", dist, reg.Name)
		case dist <= 60:
			return 0.4, fmt.Sprintf("color within ΔE %.1f of %s", dist, reg.Name)
		}
		return 0, ""
	}

	pct := dist * 100
	switch {
	case dist <= 0.05:
		return 0.85, fmt.Sprintf("value within %.0f%% of %s", math.Ceil(pct), reg.Name)
	case dist <= 0.15:
		return 0.6, fmt.Sprintf("value within %.0f%% of %s", math.Ceil(pct), reg.Name)
	case dist <= 0.30:
		return 0.35, fmt.Sprintf("value within %.0f%% of %s", math.Ceil(pct), reg.Name)
	}
	return 0, ""
}

var templateContextPattern = regexp.MustCompile(`\{\{|\{%|\bassign\b`)

// Replacement renders the token reference a context calls for: a settings
// output with underscored name inside template markup, a custom-property
// reference with hyphenated name everywhere else.
func Replacement(name, context string) string {
	if templateContextPattern.MatchString(context) {
		return fmt.Sprintf("{{ settings.%s }}", strings.ReplaceAll(name, "-", "_"))
	}
	return fmt.Sprintf("var(--%s)", strings.ReplaceAll(name, "_", "-"))
}
