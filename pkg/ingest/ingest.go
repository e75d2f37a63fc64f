// Package ingest runs the scan side of the pipeline: parallel per-file
// extraction, single-threaded inference over the aggregated batch, registry
// upserts, and the alias pass that links semantic tokens to the primitives
// they reference.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gnana997/tokensync/pkg/extractor"
	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/inference"
	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
)

// Report summarizes one ingestion run.
type Report struct {
	FilesScanned    int
	FilesFailed     int
	TokensExtracted int
	TokensCreated   int
	TokensUpdated   int
	AliasesResolved int
	Duration        time.Duration
}

// Ingester wires the extraction pool, the inference engine and the registry.
type Ingester struct {
	store     files.Store
	registry  registry.Store
	extractor *extractor.Extractor
	engine    *inference.Engine
	logger    *slog.Logger

	// Workers for the extraction pool; 0 auto-sizes.
	Workers int
}

// New builds an Ingester with its own extractor and inference engine.
func New(fileStore files.Store, reg registry.Store, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:     fileStore,
		registry:  reg,
		extractor: extractor.New(logger),
		engine:    inference.NewEngine(logger),
		logger:    logger,
	}
}

// Run scans the whole project, infers tokens and upserts them into the
// registry under projectID. Per-file read failures are logged and skipped;
// the run only fails on listing or registry errors.
func (ing *Ingester) Run(ctx context.Context, projectID string) (*Report, error) {
	start := time.Now()

	paths, err := ing.store.ListProjectFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}

	batch, failed := ing.extractAll(ctx, paths)

	report := &Report{
		FilesScanned:    len(paths),
		FilesFailed:     failed,
		TokensExtracted: len(batch),
	}

	if len(batch) == 0 {
		report.Duration = time.Since(start)
		ing.logger.Info("ingest finished with no tokens", "files", len(paths))
		return report, nil
	}

	inferred, groups := ing.engine.Enrich(batch)
	patterns := make(map[string]string, len(groups))
	for _, g := range groups {
		patterns[g.ID] = g.Pattern
	}

	byName, created, updated, err := ing.upsert(ctx, projectID, inferred, patterns)
	if err != nil {
		return nil, err
	}
	report.TokensCreated = created
	report.TokensUpdated = updated

	resolved, err := ing.resolveAliases(ctx, projectID, byName)
	if err != nil {
		return nil, err
	}
	report.AliasesResolved = resolved

	report.Duration = time.Since(start)
	ing.logger.Info("ingest finished",
		"files", report.FilesScanned,
		"failed_files", report.FilesFailed,
		"extracted", report.TokensExtracted,
		"created", report.TokensCreated,
		"updated", report.TokensUpdated,
		"aliases", report.AliasesResolved,
		"duration", report.Duration)
	return report, nil
}

// extractAll fans the paths out over the pool and reassembles results in
// submission order so inference sees tokens in declaration order.
func (ing *Ingester) extractAll(ctx context.Context, paths []string) ([]token.ExtractedToken, int) {
	pool := NewWorkerPool(ing.Workers, ing.store, ing.extractor, ing.logger)
	pool.Start()
	defer pool.Stop()

	go func() {
		for i, path := range paths {
			if err := pool.Submit(FileJob{Path: path, JobID: i}); err != nil {
				return
			}
		}
		pool.FinishSubmitting()
	}()

	results := make([]FileResult, 0, len(paths))
	failed := 0
	for range paths {
		select {
		case res := <-pool.Results():
			results = append(results, res)
		case ferr := <-pool.Errors():
			failed++
			ing.logger.Warn("skipping unreadable file", "file", ferr.Path, "error", ferr.Error)
		case <-ctx.Done():
			return nil, failed
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].JobID < results[j].JobID })

	var batch []token.ExtractedToken
	for _, res := range results {
		batch = append(batch, res.Tokens...)
	}
	return batch, failed
}

// upsert writes the inferred batch into the registry keyed by suggested
// name. Repeated occurrences of one name collapse onto the first; a later
// occurrence with a different raw value is an inconsistency for drift to
// surface, not a reason to churn the stored value.
func (ing *Ingester) upsert(ctx context.Context, projectID string, inferred []token.InferredToken, patterns map[string]string) (map[string]*registry.Token, int, int, error) {
	byName := make(map[string]*registry.Token, len(inferred))
	created, updated := 0, 0

	for i := range inferred {
		inf := &inferred[i]
		if _, seen := byName[inf.SuggestedName]; seen {
			continue
		}

		meta := tokenMetadata(inf, patterns[inf.GroupID])

		existing, err := ing.registry.FindByName(ctx, projectID, inf.SuggestedName)
		switch {
		case err == nil:
			existing.Value = inf.Value
			existing.Category = inf.Category
			existing.Metadata = meta
			if err := ing.registry.UpdateToken(ctx, existing); err != nil {
				return nil, 0, 0, fmt.Errorf("update token %q: %w", inf.SuggestedName, err)
			}
			byName[inf.SuggestedName] = existing
			updated++

		case err == registry.ErrNotFound:
			t := &registry.Token{
				ProjectID: projectID,
				Name:      inf.SuggestedName,
				Category:  inf.Category,
				Value:     inf.Value,
				Metadata:  meta,
			}
			if err := ing.registry.CreateToken(ctx, t); err != nil {
				return nil, 0, 0, fmt.Errorf("create token %q: %w", inf.SuggestedName, err)
			}
			byName[inf.SuggestedName] = t
			created++

		default:
			return nil, 0, 0, fmt.Errorf("lookup token %q: %w", inf.SuggestedName, err)
		}
	}
	return byName, created, updated, nil
}

var (
	varRefPattern      = regexp.MustCompile(`var\(\s*--([A-Za-z0-9_-]+)\s*\)`)
	settingsRefPattern = regexp.MustCompile(`\{\{-?\s*settings\.([A-Za-z0-9_]+)`)
)

// resolveAliases is the second phase: once every token of the batch exists,
// link tokens whose value references another token by variable indirection.
// Runs over the stored values so forward references inside the batch work.
func (ing *Ingester) resolveAliases(ctx context.Context, projectID string, byName map[string]*registry.Token) (int, error) {
	resolved := 0
	for _, t := range byName {
		ref := referencedName(t.Value)
		if ref == "" || ref == t.Name {
			continue
		}
		parent, err := ing.registry.FindByName(ctx, projectID, ref)
		if err == registry.ErrNotFound {
			continue
		}
		if err != nil {
			return resolved, fmt.Errorf("resolve alias %q: %w", ref, err)
		}
		if t.SemanticParentID == parent.ID {
			continue
		}
		t.SemanticParentID = parent.ID
		if err := ing.registry.UpdateToken(ctx, t); err != nil {
			return resolved, fmt.Errorf("link alias %q -> %q: %w", t.Name, ref, err)
		}
		resolved++
	}
	return resolved, nil
}

// referencedName extracts the registry name a value points at, or "".
// Settings references use underscores where registry names use hyphens.
func referencedName(value string) string {
	if m := varRefPattern.FindStringSubmatch(value); m != nil {
		return strings.ReplaceAll(m[1], "_", "-")
	}
	if m := settingsRefPattern.FindStringSubmatch(value); m != nil {
		return strings.ReplaceAll(m[1], "_", "-")
	}
	return ""
}

// tokenMetadata carries inference provenance into the stored token,
// including the (possibly scale-annotated) pattern of the token's group.
func tokenMetadata(inf *token.InferredToken, groupPattern string) *token.Metadata {
	var meta *token.Metadata
	meta = meta.WithExtra("tier", string(inf.Tier))
	meta = meta.WithExtra("source_file", inf.FilePath)
	meta = meta.WithExtra("source_line", fmt.Sprintf("%d", inf.LineNumber))
	meta = meta.WithExtra("confidence", fmt.Sprintf("%.2f", inf.Confidence))
	if groupPattern != "" {
		meta = meta.WithExtra("group_pattern", groupPattern)
	}
	if inf.Metadata != nil && inf.Metadata.Ramp != nil {
		meta.Ramp = inf.Metadata.Ramp
	}
	return meta
}
