package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gnana997/tokensync/pkg/apply"
	"github.com/gnana997/tokensync/pkg/drift"
	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/ingest"
	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
	"github.com/gnana997/tokensync/pkg/util"
)

// options are the flags shared across commands, scanned hand-rolled the
// same way for every subcommand.
type options struct {
	root    string
	project string
	db      string
	file    string
	changes string
	version string
	out     string
	in      string
	author  string
	desc    string
}

func parseOptions(args []string) (*options, error) {
	opts := &options{root: "."}
	for i := 0; i < len(args); i++ {
		flag := args[i]
		next := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", flag)
			}
			i++
			return args[i], nil
		}

		var err error
		switch flag {
		case "--root":
			opts.root, err = next()
		case "--project":
			opts.project, err = next()
		case "--db":
			opts.db, err = next()
		case "--file":
			opts.file, err = next()
		case "--changes":
			opts.changes, err = next()
		case "--version":
			opts.version, err = next()
		case "--out":
			opts.out, err = next()
		case "--in":
			opts.in, err = next()
		case "--author":
			opts.author, err = next()
		case "--desc":
			opts.desc, err = next()
		default:
			return nil, fmt.Errorf("unknown option: %s", flag)
		}
		if err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// env bundles the stores every command needs.
type env struct {
	opts     *options
	cfg      *ProjectConfig
	project  string
	disk     *files.DiskStore
	registry *registry.SQLiteStore
}

func setup(args []string) (*env, error) {
	opts, err := parseOptions(args)
	if err != nil {
		return nil, err
	}

	util.SetDefault(util.NewLogger(util.DefaultLoggerConfig()))

	cfg, err := loadProjectConfig(opts.root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var excludes []string
	if cfg != nil {
		excludes = cfg.Excludes
	}
	disk, err := files.NewDiskStore(opts.root, excludes)
	if err != nil {
		return nil, err
	}

	dbPath := resolveDatabase(opts.db, cfg, opts.root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	reg, err := registry.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	return &env{
		opts:     opts,
		cfg:      cfg,
		project:  resolveProjectID(opts.project, cfg),
		disk:     disk,
		registry: reg,
	}, nil
}

func (e *env) close() { e.registry.Close() }

func runIngest(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()

	ing := ingest.New(e.disk, e.registry, nil)
	if e.cfg != nil {
		ing.Workers = e.cfg.Workers
	}
	report, err := ing.Run(context.Background(), e.project)
	if err != nil {
		return err
	}
	fmt.Printf("scanned %d files (%d unreadable), %d occurrences, %d tokens created, %d updated, %d aliases linked in %s\n",
		report.FilesScanned, report.FilesFailed, report.TokensExtracted,
		report.TokensCreated, report.TokensUpdated, report.AliasesResolved, report.Duration)
	return nil
}

func runDrift(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()
	if e.opts.file == "" {
		return fmt.Errorf("--file is required")
	}

	items, err := detectFileDrift(e, e.opts.file)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no drift found")
		return nil
	}
	for _, item := range items {
		switch item.Match {
		case drift.MatchExact, drift.MatchNear:
			fmt.Printf("%s:%d  %s  %s match of token %s\n",
				e.opts.file, item.LineNumber, item.Value, item.Match, item.MatchedToken.Name)
		default:
			fmt.Printf("%s:%d  %s  hardcoded (%s)\n",
				e.opts.file, item.LineNumber, item.Value, item.Category)
		}
	}
	return nil
}

func runSuggest(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()
	if e.opts.file == "" {
		return fmt.Errorf("--file is required")
	}

	items, err := detectFileDrift(e, e.opts.file)
	if err != nil {
		return err
	}
	gen := drift.NewGenerator(e.registry, nil)
	suggestions, err := gen.Suggest(context.Background(), e.project, items)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("no suggestions")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("%s:%d  %s -> %s  (%.2f, %s)\n",
			e.opts.file, s.LineNumber, s.HardcodedValue, s.SuggestedReplacement, s.Confidence, s.Reason)
	}
	return nil
}

func detectFileDrift(e *env, path string) ([]drift.Item, error) {
	file, err := e.disk.GetFile(context.Background(), path)
	if err != nil {
		return nil, err
	}
	detector := drift.NewDetector(e.registry, nil)
	return detector.DetectFile(context.Background(), e.project, path, file.Content)
}

func runImpact(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()

	changes, err := loadChanges(e.opts.changes)
	if err != nil {
		return err
	}

	cached, err := files.NewCachedReader(e.disk, 0, nil)
	if err != nil {
		return err
	}
	defer cached.Close()

	analysis, err := apply.AnalyzeImpact(context.Background(), cached, changes, nil)
	if err != nil {
		return err
	}
	for _, f := range analysis.Files {
		fmt.Printf("%-8s %4d  %s\n", f.Risk, f.Matches, f.Path)
	}
	fmt.Println(analysis.Summary)
	return nil
}

func runApply(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()

	changes, err := loadChanges(e.opts.changes)
	if err != nil {
		return err
	}
	author := e.opts.author
	if author == "" {
		author = "cli"
	}

	applicator := apply.New(e.disk, e.registry, nil)
	result, err := applicator.Apply(context.Background(), e.project, changes, author, e.opts.desc)
	if err != nil {
		return err
	}
	return printResult(result)
}

func runRollback(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()
	if e.opts.version == "" {
		return fmt.Errorf("--version is required")
	}

	applicator := apply.New(e.disk, e.registry, nil)
	result, err := applicator.Rollback(context.Background(), e.project, e.opts.version)
	if err != nil {
		return err
	}
	return printResult(result)
}

func printResult(result *apply.DeploymentResult) error {
	for _, path := range result.FilesModified {
		fmt.Printf("modified %s\n", path)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	if !result.Success {
		return fmt.Errorf("apply failed (%d files written, %d errors)",
			len(result.FilesModified), len(result.Errors))
	}
	fmt.Printf("changed %d instances in %d files", result.InstancesChanged, len(result.FilesModified))
	if result.VersionID != "" {
		fmt.Printf(" (version %s)", result.VersionID)
	}
	fmt.Println()
	return nil
}

func runWatch(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()

	detector := drift.NewDetector(e.registry, nil)
	watcher, err := drift.NewWatcher(detector, e.disk, e.project, e.disk.Root(), drift.WatchOptions{}, nil,
		func(path string, items []drift.Item) {
			hardcoded := 0
			for _, item := range items {
				if item.Match != drift.MatchExact {
					hardcoded++
				}
			}
			if hardcoded > 0 {
				fmt.Printf("%s: %d untokenized values\n", path, hardcoded)
			}
		})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Println("watching for changes, Ctrl-C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func runExport(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()
	if e.opts.out == "" {
		return fmt.Errorf("--out is required")
	}

	snap, err := registry.Export(context.Background(), e.registry, e.project)
	if err != nil {
		return err
	}
	if err := registry.WriteSnapshot(e.opts.out, snap); err != nil {
		return err
	}
	fmt.Printf("exported %d tokens, %d versions to %s\n", len(snap.Tokens), len(snap.Versions), e.opts.out)
	return nil
}

func runImport(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()
	if e.opts.in == "" {
		return fmt.Errorf("--in is required")
	}

	snap, err := registry.ReadSnapshot(e.opts.in)
	if err != nil {
		return err
	}
	if err := registry.Import(context.Background(), e.registry, snap); err != nil {
		return err
	}
	fmt.Printf("imported %d tokens, %d versions from project %s\n", len(snap.Tokens), len(snap.Versions), snap.ProjectID)
	return nil
}

func runVersions(args []string) error {
	e, err := setup(args)
	if err != nil {
		return err
	}
	defer e.close()

	versions, err := e.registry.ListVersions(context.Background(), e.project)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Println("no versions recorded")
		return nil
	}
	for _, v := range versions {
		fmt.Printf("%3d  %s  %s  %d files, %d instances  %s\n",
			v.VersionNumber, v.ID, v.CreatedAt.Format("2006-01-02 15:04"),
			len(v.Changes.FilesModified), v.Changes.InstancesChanged, v.Description)
	}
	return nil
}

// loadChanges reads a TokenChange array from a JSON file.
func loadChanges(path string) ([]token.TokenChange, error) {
	if path == "" {
		return nil, fmt.Errorf("--changes is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read changes file: %w", err)
	}
	var changes []token.TokenChange
	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("parse changes file: %w", err)
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("changes file %s is empty", path)
	}
	return changes, nil
}
