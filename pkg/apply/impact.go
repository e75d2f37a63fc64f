package apply

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/token"
)

// RiskTier buckets a file by how many instances a change set touches.
type RiskTier string

const (
	RiskLow    RiskTier = "low"    // ≤2 matches
	RiskMedium RiskTier = "medium" // ≤10 matches
	RiskHigh   RiskTier = "high"   // >10 matches
)

func riskForCount(matches int) RiskTier {
	switch {
	case matches <= 2:
		return RiskLow
	case matches <= 10:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// FileImpact is the per-file match count for a proposed change set.
type FileImpact struct {
	Path    string   `json:"path"`
	Matches int      `json:"matches"`
	Risk    RiskTier `json:"risk"`
}

// ImpactAnalysis aggregates per-file impacts with a textual risk summary.
type ImpactAnalysis struct {
	Files        []FileImpact `json:"files"`
	TotalMatches int          `json:"total_matches"`
	Summary      string       `json:"summary"`
}

// AnalyzeImpact counts, read-only, how many instances each project file
// would see changed. Files with zero matches are omitted. Callers should
// bound the project size per call; this fans out one read per file.
func AnalyzeImpact(ctx context.Context, store files.Store, changes []token.TokenChange, logger *slog.Logger) (*ImpactAnalysis, error) {
	if logger == nil {
		logger = slog.Default()
	}

	matchers, err := compileMatchers(changes)
	if err != nil {
		return nil, err
	}

	paths, err := store.ListProjectFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}

	analysis := &ImpactAnalysis{}
	for _, path := range paths {
		file, err := store.GetFile(ctx, path)
		if err != nil {
			logger.Warn("skipping unreadable file during impact analysis", "file", path, "error", err)
			continue
		}
		count := 0
		for _, m := range matchers {
			count += m.countMatches(file.Content)
		}
		if count == 0 {
			continue
		}
		analysis.Files = append(analysis.Files, FileImpact{
			Path:    path,
			Matches: count,
			Risk:    riskForCount(count),
		})
		analysis.TotalMatches += count
	}

	analysis.Summary = summarize(analysis)
	return analysis, nil
}

func summarize(a *ImpactAnalysis) string {
	if len(a.Files) == 0 {
		return "no files affected"
	}
	counts := map[RiskTier]int{}
	for _, f := range a.Files {
		counts[f.Risk]++
	}
	return fmt.Sprintf("%d files affected (%d high risk, %d medium, %d low), %d instances",
		len(a.Files), counts[RiskHigh], counts[RiskMedium], counts[RiskLow], a.TotalMatches)
}

// matcher is one change's compiled pattern set plus its rewrite.
type matcher struct {
	change   token.TokenChange
	patterns []*regexp.Regexp
	rewrites []string // parallel to patterns; "" means remove the match
	literals []bool   // parallel; true substitutes rewrites[i] verbatim
}

func (m *matcher) countMatches(content []byte) int {
	count := 0
	for _, p := range m.patterns {
		count += len(p.FindAllIndex(content, -1))
	}
	return count
}

// rewrite applies the change to content, returning the result and how many
// instances changed. Literal rewrites carry user-supplied values, which must
// never be interpreted as expansion templates: a value like "$brand" would
// otherwise expand as an empty capture-group reference.
func (m *matcher) rewrite(content []byte) ([]byte, int) {
	count := 0
	for i, p := range m.patterns {
		matches := len(p.FindAllIndex(content, -1))
		if matches == 0 {
			continue
		}
		count += matches
		if m.literals[i] {
			content = p.ReplaceAllLiteral(content, []byte(m.rewrites[i]))
		} else {
			content = p.ReplaceAll(content, []byte(m.rewrites[i]))
		}
	}
	return content, count
}

// compileMatchers builds the pattern set per change: literal search for
// replace, declaration and reference forms for rename, declaration removal
// for delete.
func compileMatchers(changes []token.TokenChange) ([]*matcher, error) {
	out := make([]*matcher, 0, len(changes))
	for _, change := range changes {
		m := &matcher{change: change}

		switch change.Type {
		case token.ChangeReplace:
			if change.OldValue == "" {
				return nil, fmt.Errorf("replace change for %q has no old value", change.TokenName)
			}
			m.patterns = []*regexp.Regexp{regexp.MustCompile(regexp.QuoteMeta(change.OldValue))}
			m.rewrites = []string{change.NewValue}
			m.literals = []bool{true}

		case token.ChangeRename:
			if change.NewValue == "" {
				return nil, fmt.Errorf("rename change for %q has no new name", change.TokenName)
			}
			oldName := regexp.QuoteMeta(change.TokenName)
			newName := change.NewValue
			oldSetting := regexp.QuoteMeta(strings.ReplaceAll(change.TokenName, "-", "_"))
			newSetting := strings.ReplaceAll(newName, "-", "_")
			m.patterns = []*regexp.Regexp{
				regexp.MustCompile(`--` + oldName + `(\s*:)`),
				regexp.MustCompile(`var\(\s*--` + oldName + `\s*\)`),
				regexp.MustCompile(`(\{\{-?\s*settings\.)` + oldSetting + `\b`),
			}
			m.rewrites = []string{
				"--" + newName + "${1}",
				"var(--" + newName + ")",
				"${1}" + newSetting,
			}
			m.literals = []bool{false, true, false}

		case token.ChangeDelete:
			// Full-line declarations go away with their line; inline ones
			// (one alternation, so each occurrence counts once) with their
			// semicolon. References are substituted with the raw OldValue so
			// they do not dangle.
			oldName := regexp.QuoteMeta(change.TokenName)
			m.patterns = []*regexp.Regexp{
				regexp.MustCompile(`(?m)^[ \t]*--` + oldName + `\s*:[^;}\n]*;[ \t]*\r?\n?` +
					`|--` + oldName + `\s*:[^;}\n]*;?[ \t]*`),
				regexp.MustCompile(`var\(\s*--` + oldName + `\s*\)`),
			}
			m.rewrites = []string{"", change.OldValue}
			m.literals = []bool{true, true}

		default:
			return nil, fmt.Errorf("unknown change type %q", change.Type)
		}
		out = append(out, m)
	}
	return out, nil
}
