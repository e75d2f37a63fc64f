// Package drift compares extracted values against the persisted registry.
// Results are advisory: each call re-fetches the registry and the caller
// races against concurrent updates by design.
package drift

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gnana997/tokensync/pkg/extractor"
	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
)

// MatchType classifies one drifted occurrence against the registry.
type MatchType string

const (
	MatchExact     MatchType = "exact"     // normalized value equals a registry value
	MatchNear      MatchType = "near"      // within the category's tolerance of one
	MatchHardcoded MatchType = "hardcoded" // no registry value is close
)

// Item is one occurrence found in a file that should probably reference a
// token instead.
type Item struct {
	Value      string
	LineNumber int
	Context    string
	Category   token.Category

	Match        MatchType
	MatchedToken *registry.Token // set for exact and near
}

// Detector classifies file occurrences against the registry.
type Detector struct {
	registry  registry.Store
	extractor *extractor.Extractor
	logger    *slog.Logger

	// ColorNearDeltaE is the near-match band for colors in CIEDE2000
	// units. NumericNearPct is the relative-difference band for numeric
	// categories.
	ColorNearDeltaE float64
	NumericNearPct  float64
}

// NewDetector builds a detector with the default tolerances (ΔE 30, 15%).
func NewDetector(reg registry.Store, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		registry:        reg,
		extractor:       extractor.New(logger),
		logger:          logger,
		ColorNearDeltaE: 30,
		NumericNearPct:  0.15,
	}
}

// DetectFile extracts path's content and classifies every occurrence.
// Occurrences whose declared name is already a registry token name are
// skipped: they are tokenized, not drift. Registry errors propagate.
func (d *Detector) DetectFile(ctx context.Context, projectID, path string, content []byte) ([]Item, error) {
	known, err := d.registry.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetch registry tokens: %w", err)
	}

	knownNames := make(map[string]bool, len(known))
	for _, t := range known {
		knownNames[t.Name] = true
	}

	extracted := d.extractor.ExtractFile(path, content)

	var items []Item
	for _, occ := range extracted {
		if occ.Name != "" && knownNames[occ.Name] {
			continue
		}
		item := Item{
			Value:      occ.Value,
			LineNumber: occ.LineNumber,
			Context:    occ.Context,
			Category:   occ.Category,
		}
		item.Match, item.MatchedToken = d.classify(occ, known)
		items = append(items, item)
	}

	d.logger.Debug("drift detection finished", "file", path, "occurrences", len(items))
	return items, nil
}

// classify finds the closest category-compatible registry token.
func (d *Detector) classify(occ token.ExtractedToken, known []*registry.Token) (MatchType, *registry.Token) {
	norm := token.NormalizeValue(occ.Category, occ.Value)

	var nearest *registry.Token
	nearestDist := math.Inf(1)

	for _, reg := range known {
		if !CategoriesComparable(occ.Category, reg.Category) {
			continue
		}
		if token.NormalizeValue(reg.Category, reg.Value) == norm {
			return MatchExact, reg
		}
		dist, ok := distance(occ.Category, occ.Value, reg.Value)
		if ok && dist < nearestDist {
			nearest, nearestDist = reg, dist
		}
	}

	if nearest != nil && d.withinNearBand(occ.Category, nearestDist) {
		return MatchNear, nearest
	}
	return MatchHardcoded, nil
}

func (d *Detector) withinNearBand(cat token.Category, dist float64) bool {
	if cat == token.CategoryColor {
		return dist <= d.ColorNearDeltaE
	}
	return dist <= d.NumericNearPct
}

// CategoriesComparable reports whether values of the two categories may be
// matched against each other. Colors only match colors; the numeric layout
// categories are mutually comparable.
func CategoriesComparable(a, b token.Category) bool {
	if a == b {
		return true
	}
	return numericCategory(a) && numericCategory(b)
}

func numericCategory(cat token.Category) bool {
	switch cat {
	case token.CategorySpacing, token.CategoryBorder, token.CategoryTypography:
		return true
	}
	return false
}

// distance computes the category-appropriate distance between two raw
// values: CIEDE2000 units for colors, relative difference for numeric
// categories. ok is false when either side fails to parse.
func distance(cat token.Category, a, b string) (float64, bool) {
	if cat == token.CategoryColor {
		ca, okA := token.ParseColor(a)
		cb, okB := token.ParseColor(b)
		if !okA || !okB {
			return 0, false
		}
		return token.DeltaE(ca, cb), true
	}

	ma, okA := token.ParseMagnitude(a)
	mb, okB := token.ParseMagnitude(b)
	if !okA || !okB || mb == 0 {
		return 0, false
	}
	return math.Abs(ma-mb) / math.Abs(mb), true
}
