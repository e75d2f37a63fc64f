package extractor

import (
	"bytes"
	"log/slog"
	"regexp"

	"github.com/gnana997/tokensync/pkg/token"
)

// TemplateExtractor scans Liquid-style templates. Templates are a mixed
// format: design values hide in embedded style blocks, inline style
// attributes, assign statements and the section's schema settings block.
// Embedded stylesheet content is delegated to the stylesheet extractor
// with a line-number offset so provenance stays file-relative.
type TemplateExtractor struct {
	stylesheet *StylesheetExtractor
	log        *slog.Logger
}

// NewTemplateExtractor creates a template extractor that delegates embedded
// CSS to the given stylesheet extractor.
func NewTemplateExtractor(stylesheet *StylesheetExtractor, logger *slog.Logger) *TemplateExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateExtractor{stylesheet: stylesheet, log: logger}
}

func (t *TemplateExtractor) Name() string { return "template" }

func (t *TemplateExtractor) Matches(path string) bool {
	return hasExt(path, ".liquid")
}

var (
	styleTagBlock   = regexp.MustCompile(`(?s)\{%-?\s*style(?:sheet)?\s*-?%\}(.*?)\{%-?\s*endstyle(?:sheet)?\s*-?%\}`)
	htmlStyleBlock  = regexp.MustCompile(`(?s)<style[^>]*>(.*?)</style>`)
	schemaBlock     = regexp.MustCompile(`(?s)\{%-?\s*schema\s*-?%\}(.*?)\{%-?\s*endschema\s*-?%\}`)
	styleAttr       = regexp.MustCompile(`style\s*=\s*"([^"]*)"`)
	styleAttrSingle = regexp.MustCompile(`style\s*=\s*'([^']*)'`)
	assignLiteral   = regexp.MustCompile(`\{%-?\s*assign\s+([A-Za-z_][\w]*)\s*=\s*['"]([^'"]+)['"]`)
)

func (t *TemplateExtractor) Extract(path string, content []byte) []token.ExtractedToken {
	lines := NewLineIndex(content)
	var out []token.ExtractedToken

	// Embedded stylesheet blocks ({% style %} and <style>).
	for _, block := range []*regexp.Regexp{styleTagBlock, htmlStyleBlock} {
		for _, m := range block.FindAllSubmatchIndex(content, -1) {
			inner := content[m[2]:m[3]]
			offset := bytes.Count(content[:m[2]], []byte{'\n'})
			out = append(out, t.stylesheet.ExtractAt(path, inner, offset)...)
		}
	}

	// Inline style attributes. The attribute body is plain declarations,
	// which the stylesheet scanner handles without surrounding braces.
	for _, attr := range []*regexp.Regexp{styleAttr, styleAttrSingle} {
		for _, m := range attr.FindAllSubmatchIndex(content, -1) {
			inner := content[m[2]:m[3]]
			offset := bytes.Count(content[:m[2]], []byte{'\n'})
			out = append(out, t.stylesheet.ExtractAt(path, inner, offset)...)
		}
	}

	// Assigned literals: {% assign accent_color = '#ff6b35' %}.
	for _, m := range assignLiteral.FindAllSubmatchIndex(content, -1) {
		name := string(content[m[2]:m[3]])
		value := string(content[m[4]:m[5]])
		cat, ok := CategoryForName(name)
		if !ok {
			cat, ok = CategoryForValue(value)
		}
		if !ok {
			continue
		}
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

	// Schema settings blocks declare setting descriptors with defaults.
	for _, m := range schemaBlock.FindAllSubmatchIndex(content, -1) {
		inner := content[m[2]:m[3]]
		offset := bytes.Count(content[:m[2]], []byte{'\n'})
		out = append(out, settingTokens(path, inner, offset, t.log)...)
	}

	return out
}
