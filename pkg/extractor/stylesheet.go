package extractor

import (
	"log/slog"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/gnana997/tokensync/pkg/token"
)

// StylesheetExtractor scans CSS (and SCSS) for design values: custom
// property declarations and hardcoded literals on known properties.
//
// It works on the token stream, not a full grammar: the CSS lexer never
// rejects input, so malformed stylesheets still yield whatever values can
// be recognized before and after the damage.
type StylesheetExtractor struct {
	log *slog.Logger
}

// NewStylesheetExtractor creates a stylesheet extractor.
func NewStylesheetExtractor(logger *slog.Logger) *StylesheetExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StylesheetExtractor{log: logger}
}

func (s *StylesheetExtractor) Name() string { return "stylesheet" }

func (s *StylesheetExtractor) Matches(path string) bool {
	return hasExt(path, ".css", ".scss")
}

func (s *StylesheetExtractor) Extract(path string, content []byte) []token.ExtractedToken {
	return s.ExtractAt(path, content, 0)
}

// literal is a candidate value found inside a declaration's value tokens.
type cssLiteral struct {
	value  string
	offset int
}

// ExtractAt extracts with a line-number offset. The template extractor uses
// the offset when delegating embedded style blocks, so reported line numbers
// stay relative to the enclosing file.
func (s *StylesheetExtractor) ExtractAt(path string, content []byte, lineOffset int) []token.ExtractedToken {
	lines := NewLineIndex(content)
	lexer := css.NewLexer(parse.NewInputBytes(content))

	var out []token.ExtractedToken

	// Declaration state. A declaration starts at ident-colon and ends at a
	// semicolon, closing brace or EOF. An opening brace means the pending
	// ident-colon was a selector, not a declaration.
	var (
		property    string
		propOffset  int
		inDecl      bool
		valueStart  int
		parenDepth  int
		funcStart   int // offset of a pending color function, -1 when none
		literals    []cssLiteral
		pendingName string // last ident seen outside a declaration
		pendingOff  int
	)
	funcStart = -1
	offset := 0

	reset := func() {
		property, inDecl, pendingName = "", false, ""
		literals = literals[:0]
		parenDepth, funcStart = 0, -1
	}

	emit := func(valueEnd int) {
		if !inDecl {
			reset()
			return
		}
		raw := strings.TrimSpace(string(content[valueStart:valueEnd]))
		if raw != "" {
			out = append(out, s.declarationTokens(path, content, lines, lineOffset, property, propOffset, raw, literals)...)
		}
		reset()
	}

	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			// EOF or unrecoverable input; emit any open declaration.
			emit(offset)
			if err := lexer.Err(); err != nil && !strings.Contains(err.Error(), "EOF") {
				s.log.Warn("stylesheet scan stopped early", "path", path, "error", err)
			}
			return out
		}

		switch tt {
		case css.IdentToken, css.CustomPropertyNameToken:
			if !inDecl {
				pendingName = string(data)
				pendingOff = offset
			}
		case css.ColonToken:
			if !inDecl && pendingName != "" {
				property = pendingName
				propOffset = pendingOff
				inDecl = true
				valueStart = offset + len(data)
				literals = literals[:0]
			}
		case css.SemicolonToken:
			emit(offset)
		case css.LeftBraceToken:
			// The ident-colon we were tracking belonged to a selector.
			reset()
		case css.RightBraceToken:
			emit(offset)
		case css.HashToken:
			if inDecl && parenDepth == 0 {
				if _, ok := token.ParseColor(string(data)); ok {
					literals = append(literals, cssLiteral{value: string(data), offset: offset})
				}
			}
		case css.DimensionToken, css.NumberToken, css.PercentageToken:
			if inDecl && parenDepth == 0 {
				literals = append(literals, cssLiteral{value: string(data), offset: offset})
			}
		case css.FunctionToken:
			name := strings.ToLower(strings.TrimSuffix(string(data), "("))
			if inDecl && parenDepth == 0 && (name == "rgb" || name == "rgba" || name == "hsl" || name == "hsla") {
				funcStart = offset
			}
			parenDepth++
		case css.LeftParenthesisToken:
			parenDepth++
		case css.RightParenthesisToken:
			parenDepth--
			if parenDepth == 0 && funcStart >= 0 {
				literals = append(literals, cssLiteral{
					value:  string(content[funcStart : offset+len(data)]),
					offset: funcStart,
				})
				funcStart = -1
			}
		}
		offset += len(data)
	}
}

// declarationTokens turns one finished declaration into extracted tokens.
func (s *StylesheetExtractor) declarationTokens(
	path string,
	content []byte,
	lines *LineIndex,
	lineOffset int,
	property string,
	propOffset int,
	raw string,
	literals []cssLiteral,
) []token.ExtractedToken {
	line := lines.LineAt(propOffset)
	ctx := lines.LineText(content, line)

	// Custom property: one token for the whole declaration, named after
	// the variable. The value may itself be a var() reference; the alias
	// pass during ingestion resolves those.
	if strings.HasPrefix(property, "--") {
		name := strings.TrimPrefix(property, "--")
		cat, ok := CategoryForName(name)
		if !ok {
			cat, ok = CategoryForValue(raw)
		}
		if !ok {
			// Neither the name nor the value shape identifies a design
			// value (includes bare var() aliases on opaque names).
			return nil
		}
		return []token.ExtractedToken{{
			Name:       name,
			Category:   cat,
			Value:      raw,
			FilePath:   path,
			LineNumber: line + lineOffset,
			Context:    ctx,
		}}
	}

	cat, ok := CategoryForProperty(property)
	if !ok {
		return nil
	}

	// Composite values read as a whole; their individual numbers mean
	// nothing out of context.
	switch cat {
	case token.CategoryShadow, token.CategoryAnimation:
		return []token.ExtractedToken{{
			Category: cat, Value: raw, FilePath: path,
			LineNumber: line + lineOffset, Context: ctx,
		}}
	}
	if strings.EqualFold(property, "font-family") {
		return []token.ExtractedToken{{
			Category: cat, Value: raw, FilePath: path,
			LineNumber: line + lineOffset, Context: ctx,
		}}
	}

	var out []token.ExtractedToken
	for _, lit := range literals {
		litLine := lines.LineAt(lit.offset)
		out = append(out, token.ExtractedToken{
			Category:   cat,
			Value:      lit.value,
			FilePath:   path,
			LineNumber: litLine + lineOffset,
			Context:    lines.LineText(content, litLine),
		})
	}
	return out
}
