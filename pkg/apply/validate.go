package apply

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidationResult is the outcome of checking one modified file.
type ValidationResult struct {
	FilePath string
	Valid    bool
	Errors   []string
}

// validateContent runs the format-appropriate syntax check. Formats without
// a checker pass; heuristic substitution can only break the structures the
// checkers cover.
func validateContent(path string, content []byte) ValidationResult {
	res := ValidationResult{FilePath: path, Valid: true}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".css", ".scss":
		res.Errors = validateStylesheet(content)
	case ".liquid":
		res.Errors = validateTemplate(content)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// validateStylesheet checks brace/paren balance and string termination.
// Comments are skipped so a brace inside /* ... */ does not count.
func validateStylesheet(content []byte) []string {
	var errs []string
	braces, parens := 0, 0
	var quote byte
	inComment := false

	for i := 0; i < len(content); i++ {
		c := content[i]

		if inComment {
			if c == '*' && i+1 < len(content) && content[i+1] == '/' {
				inComment = false
				i++
			}
			continue
		}
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(content) && content[i+1] == '*' {
				inComment = true
				i++
			}
		case '"', '\'':
			quote = c
		case '{':
			braces++
		case '}':
			braces--
			if braces < 0 {
				return []string{"unbalanced braces: '}' without matching '{'"}
			}
		case '(':
			parens++
		case ')':
			parens--
			if parens < 0 {
				return []string{"unbalanced parentheses: ')' without matching '('"}
			}
		}
	}

	if braces != 0 {
		errs = append(errs, fmt.Sprintf("unbalanced braces: %d unclosed", braces))
	}
	if parens != 0 {
		errs = append(errs, fmt.Sprintf("unbalanced parentheses: %d unclosed", parens))
	}
	if quote != 0 {
		errs = append(errs, fmt.Sprintf("unterminated string started with %q", string(quote)))
	}
	if inComment {
		errs = append(errs, "unterminated comment")
	}
	return errs
}

var (
	templateTagPattern = regexp.MustCompile(`\{%-?\s*(\w+)`)

	// Block tags that need a matching end tag.
	templateBlockTags = map[string]bool{
		"if": true, "unless": true, "for": true, "case": true,
		"capture": true, "form": true, "paginate": true,
		"schema": true, "style": true, "stylesheet": true, "javascript": true,
		"comment": true, "raw": true, "tablerow": true,
	}

	// Bodies that hold CSS, JS or JSON rather than template markup. Adjacent
	// closing braces in minified CSS ("...red}}") read as a '}}' delimiter,
	// so these bodies are cut out (tags kept) before any checking.
	embeddedBodyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)(\{%-?\s*(?:style|stylesheet|javascript|schema|raw)\s*-?%\}).*?(\{%-?\s*end(?:style|stylesheet|javascript|schema|raw)\s*-?%\})`),
		regexp.MustCompile(`(?is)(<style\b[^>]*>).*?(</style>)`),
	}
)

func stripEmbeddedBodies(text string) string {
	for _, p := range embeddedBodyPatterns {
		text = p.ReplaceAllString(text, "$1$2")
	}
	return text
}

// validateTemplate checks that output/tag delimiters balance and every
// block tag has its end tag, in properly nested order. Embedded style,
// script and schema bodies are exempt; their syntax is not template syntax.
func validateTemplate(content []byte) []string {
	var errs []string
	text := stripEmbeddedBodies(string(content))

	if opens, closes := strings.Count(text, "{{"), strings.Count(text, "}}"); opens != closes {
		errs = append(errs, fmt.Sprintf("unbalanced output delimiters: %d '{{' vs %d '}}'", opens, closes))
	}
	if opens, closes := strings.Count(text, "{%"), strings.Count(text, "%}"); opens != closes {
		errs = append(errs, fmt.Sprintf("unbalanced tag delimiters: %d '{%%' vs %d '%%}'", opens, closes))
	}

	var stack []string
	for _, m := range templateTagPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		switch {
		case templateBlockTags[name]:
			stack = append(stack, name)
		case strings.HasPrefix(name, "end"):
			want := strings.TrimPrefix(name, "end")
			if len(stack) == 0 {
				errs = append(errs, fmt.Sprintf("%q without an open block", name))
				continue
			}
			top := stack[len(stack)-1]
			if top != want {
				errs = append(errs, fmt.Sprintf("%q does not close innermost block %q", name, top))
			}
			stack = stack[:len(stack)-1]
		}
	}
	for _, open := range stack {
		errs = append(errs, fmt.Sprintf("unclosed block tag %q", open))
	}
	return errs
}
