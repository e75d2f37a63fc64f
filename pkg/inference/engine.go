// Package inference composes grouping, scale detection, inconsistency
// detection and naming into enriched tokens ready for the registry.
package inference

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gnana997/tokensync/pkg/grouper"
	"github.com/gnana997/tokensync/pkg/namer"
	"github.com/gnana997/tokensync/pkg/scale"
	"github.com/gnana997/tokensync/pkg/token"
)

// Engine runs the inference pipeline over one extraction batch. It is
// single-threaded per batch: stages feed each other and naming is
// order-dependent (later suggestions must see earlier-assigned names).
type Engine struct {
	grouper *grouper.Grouper
	log     *slog.Logger

	// NearDuplicateDeltaE flags pairs of colors closer than this but not
	// identical as inconsistencies.
	NearDuplicateDeltaE float64
}

// NewEngine creates an inference engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		grouper:             grouper.New(logger),
		log:                 logger,
		NearDuplicateDeltaE: 6,
	}
}

// Enrich runs the full pipeline: group → detect scales → flag
// inconsistencies → name → assemble. The returned groups carry the scale
// annotations in their pattern text; InferredToken.GroupID keys into them.
func (e *Engine) Enrich(batch []token.ExtractedToken) ([]token.InferredToken, []token.TokenGroup) {
	if len(batch) == 0 {
		return []token.InferredToken{}, nil
	}

	// Extractors leave IDs empty; assign them now so group membership can
	// be tracked by identity.
	toks := make([]token.ExtractedToken, len(batch))
	copy(toks, batch)
	for i := range toks {
		if toks[i].ID == "" {
			toks[i].ID = uuid.NewString()
		}
	}

	groups := e.grouper.GroupTokens(toks)
	e.annotateScales(toks, groups)

	groupOf := make(map[string]string, len(toks))
	for _, g := range groups {
		for _, t := range g.Tokens {
			groupOf[t.ID] = g.ID
		}
	}

	issues := e.detectInconsistencies(toks)

	nm := namer.New()
	out := make([]token.InferredToken, 0, len(toks))
	for _, t := range toks {
		name, conf := nm.Suggest(t)
		out = append(out, token.InferredToken{
			ExtractedToken:  t,
			SuggestedName:   name,
			Confidence:      conf,
			GroupID:         groupOf[t.ID],
			Inconsistencies: issues[t.ID],
			Tier:            token.ClassifyTier(name),
		})
	}

	e.log.Info("inference complete",
		"tokens", len(out), "groups", len(groups),
		"with_inconsistencies", len(issues))
	return out, groups
}

// annotateScales runs scale detection for spacing and typography and
// appends the finding to the pattern text of that category's groups.
func (e *Engine) annotateScales(toks []token.ExtractedToken, groups []token.TokenGroup) {
	for _, cat := range []token.Category{token.CategorySpacing, token.CategoryTypography} {
		var catToks []token.ExtractedToken
		for _, t := range toks {
			if t.Category == cat {
				catToks = append(catToks, t)
			}
		}
		p := scale.Detect(grouper.SortedMagnitudes(catToks), cat)
		if p == nil {
			continue
		}
		e.log.Debug("scale detected", "category", cat, "base", p.BaseValue, "ratio", p.Ratio)
		for i := range groups {
			if groups[i].Category == cat {
				groups[i].Pattern += fmt.Sprintf("; fits %gx scale from base %g", p.Ratio, p.BaseValue)
			}
		}
	}
}

// detectInconsistencies flags (a) the same normalized value declared under
// two or more different names, and (b) pairs of colors perceptually close
// enough to be accidental near-duplicates. Returns issues keyed by token ID.
func (e *Engine) detectInconsistencies(toks []token.ExtractedToken) map[string][]string {
	issues := make(map[string][]string)

	// (a) one value, many names.
	namesByValue := make(map[string]map[string]bool)
	for _, t := range toks {
		if t.Name == "" {
			continue
		}
		key := string(t.Category) + "/" + token.NormalizeValue(t.Category, t.Value)
		if namesByValue[key] == nil {
			namesByValue[key] = make(map[string]bool)
		}
		namesByValue[key][t.Name] = true
	}
	for _, t := range toks {
		if t.Name == "" {
			continue
		}
		key := string(t.Category) + "/" + token.NormalizeValue(t.Category, t.Value)
		if names := namesByValue[key]; len(names) >= 2 {
			others := make([]string, 0, len(names)-1)
			for n := range names {
				if n != t.Name {
					others = append(others, n)
				}
			}
			issues[t.ID] = append(issues[t.ID],
				fmt.Sprintf("value %q is also declared as %v", t.Value, others))
		}
	}

	// (b) near-duplicate colors, both directions get an entry.
	type colorTok struct {
		id    string
		value string
		norm  string
	}
	var colors []colorTok
	for _, t := range toks {
		if t.Category == token.CategoryColor {
			if _, ok := token.ParseColor(t.Value); ok {
				colors = append(colors, colorTok{id: t.ID, value: t.Value, norm: token.NormalizeColor(t.Value)})
			}
		}
	}
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			if colors[i].norm == colors[j].norm {
				continue
			}
			ci, _ := token.ParseColor(colors[i].value)
			cj, _ := token.ParseColor(colors[j].value)
			d := token.DeltaE(ci, cj)
			if d < e.NearDuplicateDeltaE {
				issues[colors[i].id] = append(issues[colors[i].id],
					fmt.Sprintf("near-duplicate of %s (ΔE %.1f)", colors[j].value, d))
				issues[colors[j].id] = append(issues[colors[j].id],
					fmt.Sprintf("near-duplicate of %s (ΔE %.1f)", colors[i].value, d))
			}
		}
	}

	return issues
}
