package grouper

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/gnana997/tokensync/pkg/token"
)

// spacingCluster merges sorted magnitudes within the pixel threshold of
// the running cluster average.
type spacingCluster struct {
	tokens []token.ExtractedToken
	sum    float64
}

func (c *spacingCluster) average() float64 { return c.sum / float64(len(c.tokens)) }

// groupSpacing sorts spacing tokens by pixel magnitude and greedily merges
// neighbors within SpacingThreshold px of the running average. Values that
// don't parse as magnitudes fall into one leftover group.
func (g *Grouper) groupSpacing(toks []token.ExtractedToken) []token.TokenGroup {
	type measured struct {
		tok token.ExtractedToken
		px  float64
	}

	var vals []measured
	var unparsed []token.ExtractedToken
	for _, t := range toks {
		if n, ok := token.ParseMagnitude(t.Value); ok {
			vals = append(vals, measured{tok: t, px: n})
		} else {
			unparsed = append(unparsed, t)
		}
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].px < vals[j].px })

	var clusters []*spacingCluster
	for _, v := range vals {
		if n := len(clusters); n > 0 && math.Abs(v.px-clusters[n-1].average()) <= g.SpacingThreshold {
			clusters[n-1].tokens = append(clusters[n-1].tokens, v.tok)
			clusters[n-1].sum += v.px
			continue
		}
		clusters = append(clusters, &spacingCluster{tokens: []token.ExtractedToken{v.tok}, sum: v.px})
	}

	groups := make([]token.TokenGroup, 0, len(clusters)+1)
	for _, c := range clusters {
		groups = append(groups, token.TokenGroup{
			ID:       uuid.NewString(),
			Category: token.CategorySpacing,
			Tokens:   c.tokens,
			Pattern:  fmt.Sprintf("≈%gpx spacing", math.Round(c.average()*10)/10),
		})
	}
	if len(unparsed) > 0 {
		groups = append(groups, token.TokenGroup{
			ID:       uuid.NewString(),
			Category: token.CategorySpacing,
			Tokens:   unparsed,
			Pattern:  "non-numeric spacing values",
		})
	}
	return groups
}
