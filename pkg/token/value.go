package token

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Value parsing helpers shared by the grouper, inference and drift stages.
// These are deliberately tolerant: heterogeneous storefront code contains
// every color and unit spelling imaginable, and a value we cannot parse is
// never an error, only a value we cannot compare.

var (
	hexPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbPattern  = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*[, ]\s*(\d{1,3})\s*[, ]\s*(\d{1,3})\s*(?:[,/]\s*[\d.%]+\s*)?\)$`)
	unitPattern = regexp.MustCompile(`^(-?\d*\.?\d+)(px|rem|em|%|vw|vh|pt|s|ms)?$`)
)

// ParseColor parses hex (3/4/6/8 digit) and rgb()/rgba() color values.
// The alpha channel, when present, is ignored: perceptual grouping and
// drift matching operate on the opaque color.
func ParseColor(value string) (colorful.Color, bool) {
	v := strings.TrimSpace(strings.ToLower(value))

	if hexPattern.MatchString(v) {
		hex := v[1:]
		switch len(hex) {
		case 4: // #rgba
			hex = hex[:3]
		case 8: // #rrggbbaa
			hex = hex[:6]
		}
		if len(hex) == 3 {
			hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
		}
		c, err := colorful.Hex("#" + hex)
		if err != nil {
			return colorful.Color{}, false
		}
		return c, true
	}

	if m := rgbPattern.FindStringSubmatch(v); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		if r > 255 || g > 255 || b > 255 {
			return colorful.Color{}, false
		}
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, true
	}

	return colorful.Color{}, false
}

// DeltaE returns the CIEDE2000 perceptual distance between two colors in
// conventional delta-E units (0 identical, ~100 black/white). go-colorful
// scales Lab lightness to 0..1, so its result is multiplied back up.
func DeltaE(a, b colorful.Color) float64 {
	return a.DistanceCIEDE2000(b) * 100
}

// NormalizeColor canonicalizes a parseable color value to lowercase
// six-digit hex. Unparseable values are returned lowercased and trimmed.
func NormalizeColor(value string) string {
	if c, ok := ParseColor(value); ok {
		return c.Hex()
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// ParseMagnitude extracts the numeric magnitude of a dimension value,
// normalizing rem/em to pixel equivalents at a 16px base. Bare numbers are
// treated as pixels. Returns false for anything non-numeric.
func ParseMagnitude(value string) (float64, bool) {
	m := unitPattern.FindStringSubmatch(strings.TrimSpace(strings.ToLower(value)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "rem", "em":
		return n * 16, true
	case "s":
		return n * 1000, true // seconds to milliseconds, for animation values
	default:
		return n, true
	}
}

// NormalizeValue canonicalizes a raw value for equality comparison:
// colors collapse to six-digit hex, everything else lowercases and
// squeezes whitespace.
func NormalizeValue(cat Category, value string) string {
	if cat == CategoryColor {
		return NormalizeColor(value)
	}
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
