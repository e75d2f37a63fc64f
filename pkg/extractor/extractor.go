// Package extractor harvests design-value occurrences from storefront
// source files. One extractor per format, dispatched by file extension.
//
// Extraction is heuristic, not AST-exact: the goal is tolerant token
// harvesting from heterogeneous and sometimes malformed input. Extraction
// never fails a batch — on any internal parse problem it logs, keeps what
// it has, and moves on.
package extractor

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gnana997/tokensync/pkg/token"
)

// FormatExtractor scans one source format for design-value occurrences.
type FormatExtractor interface {
	// Name identifies the format ("stylesheet", "template", ...).
	Name() string

	// Matches reports whether this extractor handles the given path.
	Matches(path string) bool

	// Extract returns all occurrences found in content. It never returns
	// an error: malformed input yields a partial or empty list.
	Extract(path string, content []byte) []token.ExtractedToken
}

// Extractor dispatches files to the per-format extractors.
type Extractor struct {
	formats []FormatExtractor
	log     *slog.Logger
}

// New creates an extractor with all built-in formats registered.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	stylesheet := NewStylesheetExtractor(logger)
	return &Extractor{
		formats: []FormatExtractor{
			stylesheet,
			NewTemplateExtractor(stylesheet, logger),
			NewScriptExtractor(logger),
			NewSettingsExtractor(logger),
		},
		log: logger,
	}
}

// ForPath returns the extractor responsible for path, or nil when the
// format is not recognized.
func (e *Extractor) ForPath(path string) FormatExtractor {
	for _, f := range e.formats {
		if f.Matches(path) {
			return f
		}
	}
	return nil
}

// ExtractFile extracts all occurrences from one file. Unrecognized formats
// return an empty list.
func (e *Extractor) ExtractFile(path string, content []byte) []token.ExtractedToken {
	f := e.ForPath(path)
	if f == nil {
		e.log.Debug("no extractor for file", "path", path)
		return nil
	}
	toks := f.Extract(path, content)
	e.log.Debug("extracted file", "path", path, "format", f.Name(), "tokens", len(toks))
	return toks
}

func hasExt(path string, exts ...string) bool {
	got := strings.ToLower(filepath.Ext(path))
	for _, ext := range exts {
		if got == ext {
			return true
		}
	}
	return false
}
