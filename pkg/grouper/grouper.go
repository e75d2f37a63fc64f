// Package grouper clusters extracted tokens into similarity groups, one
// strategy per category: perceptual distance for colors, pixel proximity
// for spacing, font-family buckets for typography, exact values elsewhere.
//
// Clustering is greedy single-pass and worst-case O(n²) within a category
// (each value is compared to every existing cluster). Batches are bounded
// by one project's files, which keeps this acceptable; it is the known
// scaling limit of this package.
package grouper

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/gnana997/tokensync/pkg/token"
)

// Grouper clusters a batch of extracted tokens by category.
type Grouper struct {
	log *slog.Logger

	// ColorThreshold is the CIEDE2000 distance under which two colors
	// join the same cluster.
	ColorThreshold float64

	// SpacingThreshold is the pixel distance under which spacing values
	// merge into a running cluster.
	SpacingThreshold float64
}

// New creates a grouper with the default thresholds.
func New(logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grouper{
		log:              logger,
		ColorThreshold:   20, // delta-E units
		SpacingThreshold: 2,  // px
	}
}

// GroupTokens partitions the batch by category and clusters each partition.
// The result order is stable: categories in declaration order, groups in
// first-seen order.
func (g *Grouper) GroupTokens(batch []token.ExtractedToken) []token.TokenGroup {
	if len(batch) == 0 {
		return []token.TokenGroup{}
	}

	byCategory := make(map[token.Category][]token.ExtractedToken)
	for _, t := range batch {
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	var groups []token.TokenGroup
	for _, cat := range token.Categories() {
		toks := byCategory[cat]
		if len(toks) == 0 {
			continue
		}
		switch cat {
		case token.CategoryColor:
			groups = append(groups, g.groupColors(toks)...)
		case token.CategorySpacing:
			groups = append(groups, g.groupSpacing(toks)...)
		case token.CategoryTypography:
			groups = append(groups, g.groupTypography(toks)...)
		default:
			groups = append(groups, g.groupExact(cat, toks)...)
		}
	}

	g.log.Debug("grouped batch", "tokens", len(batch), "groups", len(groups))
	return groups
}

// groupExact buckets tokens by normalized value.
func (g *Grouper) groupExact(cat token.Category, toks []token.ExtractedToken) []token.TokenGroup {
	buckets := make(map[string][]token.ExtractedToken)
	var order []string
	for _, t := range toks {
		key := token.NormalizeValue(cat, t.Value)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], t)
	}

	groups := make([]token.TokenGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, token.TokenGroup{
			ID:       uuid.NewString(),
			Category: cat,
			Tokens:   buckets[key],
			Pattern:  fmt.Sprintf("%d × %q", len(buckets[key]), key),
		})
	}
	return groups
}

// SortedMagnitudes extracts, deduplicates and sorts the numeric magnitudes
// of a token slice. Used by the inference stage to feed scale detection.
func SortedMagnitudes(toks []token.ExtractedToken) []float64 {
	seen := make(map[float64]bool)
	var vals []float64
	for _, t := range toks {
		if n, ok := token.ParseMagnitude(t.Value); ok && n > 0 && !seen[n] {
			seen[n] = true
			vals = append(vals, n)
		}
	}
	sort.Float64s(vals)
	return vals
}
