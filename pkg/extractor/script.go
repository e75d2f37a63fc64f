package extractor

import (
	"log/slog"
	"regexp"

	"github.com/gnana997/tokensync/pkg/token"
)

// ScriptExtractor harvests design values from JavaScript/TypeScript using a
// small pattern table. Scripts are the noisiest format, so only string
// literals bound to a name (variable or object key) and bare color
// literals are considered.
type ScriptExtractor struct {
	log *slog.Logger
}

// NewScriptExtractor creates a script extractor.
func NewScriptExtractor(logger *slog.Logger) *ScriptExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptExtractor{log: logger}
}

func (s *ScriptExtractor) Name() string { return "script" }

func (s *ScriptExtractor) Matches(path string) bool {
	return hasExt(path, ".js", ".mjs", ".ts")
}

// scriptPatterns bind a name to a quoted string literal. Submatch 1 is the
// declared name, submatch 2 the value.
var scriptPatterns = []*regexp.Regexp{
	// const primaryColor = '#3b82f6'
	regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*['"]([^'"\n]+)['"]`),
	// { accentColor: '#ff6b35' } and obj.spacing = '8px'
	regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*[:=]\s*['"]([^'"\n]+)['"]`),
}

// bareColorPattern catches color strings not bound to any name.
var bareColorPattern = regexp.MustCompile(`['"](#[0-9a-fA-F]{3,8}|rgba?\([^)]*\))['"]`)

func (s *ScriptExtractor) Extract(path string, content []byte) []token.ExtractedToken {
	lines := NewLineIndex(content)

	var out []token.ExtractedToken
	seen := make(map[int]bool) // value start offsets already claimed

	for _, pat := range scriptPatterns {
		for _, m := range pat.FindAllSubmatchIndex(content, -1) {
			if seen[m[4]] {
				continue
			}
			name := string(content[m[2]:m[3]])
			value := string(content[m[4]:m[5]])

			cat, ok := CategoryForName(name)
			if !ok {
				cat, ok = CategoryForValue(value)
			}
			if !ok {
				continue
			}
			seen[m[4]] = true

			line := lines.LineAt(m[0])
			out = append(out, token.ExtractedToken{
				Name:       name,
				Category:   cat,
				Value:      value,
				FilePath:   path,
				LineNumber: line,
				Context:    lines.LineText(content, line),
			})
		}
	}

	for _, m := range bareColorPattern.FindAllSubmatchIndex(content, -1) {
		if seen[m[2]] {
			continue
		}
		value := string(content[m[2]:m[3]])
		if _, ok := token.ParseColor(value); !ok {
			continue
		}
		seen[m[2]] = true

		line := lines.LineAt(m[0])
		out = append(out, token.ExtractedToken{
			Category:   token.CategoryColor,
			Value:      value,
			FilePath:   path,
			LineNumber: line,
			Context:    lines.LineText(content, line),
		})
	}

	return out
}
