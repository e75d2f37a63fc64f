package grouper

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gnana997/tokensync/pkg/token"
)

// colorCluster accumulates members and a running RGB centroid.
type colorCluster struct {
	tokens []token.ExtractedToken
	sumR   float64
	sumG   float64
	sumB   float64
}

func (c *colorCluster) centroid() colorful.Color {
	n := float64(len(c.tokens))
	return colorful.Color{R: c.sumR / n, G: c.sumG / n, B: c.sumB / n}
}

func (c *colorCluster) add(t token.ExtractedToken, col colorful.Color) {
	c.tokens = append(c.tokens, t)
	c.sumR += col.R
	c.sumG += col.G
	c.sumB += col.B
}

// groupColors clusters color tokens by perceptual distance to running
// cluster centroids. Greedy single pass: a value joins the first cluster
// within the threshold, else starts its own. Unparseable values share one
// fallback group.
func (g *Grouper) groupColors(toks []token.ExtractedToken) []token.TokenGroup {
	var clusters []*colorCluster
	var unparseable []token.ExtractedToken

	for _, t := range toks {
		col, ok := token.ParseColor(t.Value)
		if !ok {
			unparseable = append(unparseable, t)
			continue
		}

		joined := false
		for _, c := range clusters {
			if token.DeltaE(col, c.centroid()) < g.ColorThreshold {
				c.add(t, col)
				joined = true
				break
			}
		}
		if !joined {
			c := &colorCluster{}
			c.add(t, col)
			clusters = append(clusters, c)
		}
	}

	groups := make([]token.TokenGroup, 0, len(clusters)+1)
	for _, c := range clusters {
		groups = append(groups, token.TokenGroup{
			ID:       uuid.NewString(),
			Category: token.CategoryColor,
			Tokens:   c.tokens,
			Pattern:  describeColor(c.centroid()),
		})
	}
	if len(unparseable) > 0 {
		groups = append(groups, token.TokenGroup{
			ID:       uuid.NewString(),
			Category: token.CategoryColor,
			Tokens:   unparseable,
			Pattern:  "unparseable color values",
		})
	}
	return groups
}

// hueNames covers the wheel in 8 slices starting at red.
var hueNames = []struct {
	upTo float64
	name string
}{
	{15, "red"}, {45, "orange"}, {70, "yellow"}, {160, "green"},
	{200, "cyan"}, {260, "blue"}, {300, "purple"}, {345, "pink"},
	{360, "red"},
}

// HueName returns the wheel-slice name for a color's hue ("blue", "red").
// Near-greys have no meaningful hue and report "grey".
func HueName(c colorful.Color) string {
	h, s, _ := c.Hsl()
	if s < 0.10 {
		return "grey"
	}
	for _, hn := range hueNames {
		if h <= hn.upTo {
			return hn.name
		}
	}
	return "red"
}

// describeColor labels a cluster from its centroid's luminance and hue.
func describeColor(c colorful.Color) string {
	_, s, l := c.Hsl()
	switch {
	case l < 0.12:
		return "dark / near-black colors"
	case l > 0.92:
		return "light / near-white colors"
	case s < 0.10:
		return "greys / neutral colors"
	}
	return fmt.Sprintf("shades of %s", HueName(c))
}
