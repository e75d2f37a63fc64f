package extractor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gnana997/tokensync/pkg/token"
)

// SettingsExtractor walks structured-settings JSON (settings schemas and
// data files) and collects any object shaped like a setting descriptor —
// {"type": ..., "id": ...} — regardless of nesting depth.
type SettingsExtractor struct {
	log *slog.Logger
}

// NewSettingsExtractor creates a settings extractor.
func NewSettingsExtractor(logger *slog.Logger) *SettingsExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsExtractor{log: logger}
}

func (se *SettingsExtractor) Name() string { return "settings" }

func (se *SettingsExtractor) Matches(path string) bool {
	return hasExt(path, ".json")
}

func (se *SettingsExtractor) Extract(path string, content []byte) []token.ExtractedToken {
	return settingTokens(path, content, 0, se.log)
}

// settingTokens parses settings JSON and emits a token for every setting
// descriptor whose declared type and default value are compatible with a
// design category. Shared with the template extractor's schema blocks.
func settingTokens(path string, content []byte, lineOffset int, log *slog.Logger) []token.ExtractedToken {
	var root any
	if err := json.Unmarshal(content, &root); err != nil {
		// Garbage settings are a per-file condition, never a batch failure.
		log.Warn("settings parse failed, skipping file", "path", path, "error", err)
		return nil
	}

	lines := NewLineIndex(content)
	finder := newIDFinder(content)

	var out []token.ExtractedToken
	walkSettings(root, func(desc map[string]any) {
		typ, _ := desc["type"].(string)
		id, _ := desc["id"].(string)
		if typ == "" || id == "" {
			return
		}

		cat, value, ok := settingValue(typ, desc["default"])
		if !ok {
			return
		}

		line := lines.LineAt(finder.find(id))
		out = append(out, token.ExtractedToken{
			Name:       id,
			Category:   cat,
			Value:      value,
			FilePath:   path,
			LineNumber: line + lineOffset,
			Context:    lines.LineText(content, line),
			Metadata:   (&token.Metadata{}).WithExtra("setting_type", typ),
		})
	})
	return out
}

// walkSettings recursively visits every JSON object, invoking fn on each.
func walkSettings(node any, fn func(map[string]any)) {
	switch v := node.(type) {
	case map[string]any:
		fn(v)
		for _, child := range v {
			walkSettings(child, fn)
		}
	case []any:
		for _, child := range v {
			walkSettings(child, fn)
		}
	}
}

// settingValue maps a setting descriptor's declared type and default to a
// category and raw value. Incompatible combinations return ok=false.
func settingValue(typ string, def any) (token.Category, string, bool) {
	t := strings.ToLower(typ)
	switch {
	case strings.Contains(t, "color"):
		s, ok := def.(string)
		if !ok || s == "" {
			return "", "", false
		}
		return token.CategoryColor, s, true

	case t == "font_picker" || t == "font" || strings.Contains(t, "font"):
		s, ok := def.(string)
		if !ok || s == "" {
			return "", "", false
		}
		return token.CategoryTypography, s, true

	case t == "range" || t == "number":
		n, ok := def.(float64)
		if !ok {
			return "", "", false
		}
		if n == float64(int64(n)) {
			return token.CategorySpacing, fmt.Sprintf("%dpx", int64(n)), true
		}
		return token.CategorySpacing, fmt.Sprintf("%gpx", n), true
	}
	return "", "", false
}

// idFinder locates setting ids in the raw JSON text so line numbers can be
// reported. Repeated ids resolve to successive occurrences.
type idFinder struct {
	content []byte
	cursors map[string]int
}

func newIDFinder(content []byte) *idFinder {
	return &idFinder{content: content, cursors: make(map[string]int)}
}

func (f *idFinder) find(id string) int {
	pattern := regexp.MustCompile(`"id"\s*:\s*"` + regexp.QuoteMeta(id) + `"`)
	from := f.cursors[id]
	if from > len(f.content) {
		from = len(f.content)
	}
	loc := pattern.FindIndex(f.content[from:])
	if loc == nil {
		// Fall back to the first occurrence of the bare id string.
		if i := strings.Index(string(f.content), `"`+id+`"`); i >= 0 {
			return i
		}
		return 0
	}
	f.cursors[id] = from + loc[1]
	return from + loc[0]
}
