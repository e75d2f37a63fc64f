package files

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// supportedExtensions is the format allow-list. Discovery skips everything
// else; extraction dispatch narrows further per extractor.
var supportedExtensions = map[string]bool{
	".css":    true,
	".scss":   true,
	".liquid": true,
	".js":     true,
	".mjs":    true,
	".ts":     true,
	".json":   true,
}

// DefaultExcludes skips the directories that never hold authored styles.
var DefaultExcludes = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
	"**/vendor/**",
}

// DiskStore serves files from a project root on the local filesystem.
type DiskStore struct {
	root     string
	excludes []string
}

// NewDiskStore resolves root to an absolute path. Extra exclude patterns
// (doublestar syntax, matched against slash-relative paths) stack on top of
// DefaultExcludes.
func NewDiskStore(root string, excludes []string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", abs)
	}
	all := make([]string, 0, len(DefaultExcludes)+len(excludes))
	all = append(all, DefaultExcludes...)
	all = append(all, excludes...)
	return &DiskStore{root: abs, excludes: all}, nil
}

// Root returns the absolute project root.
func (d *DiskStore) Root() string { return d.root }

// ListProjectFiles walks the root and returns slash-relative paths of every
// supported file, excludes applied. Unreadable subtrees are skipped, not
// fatal.
func (d *DiskStore) ListProjectFiles(ctx context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range d.excludes {
			matched, _ := doublestar.PathMatch(pattern, rel)
			if matched {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if entry.IsDir() {
			return nil
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DiskStore) GetFile(ctx context.Context, path string) (*File, error) {
	abs, err := d.resolve(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &File{Path: path, Content: content}, nil
}

func (d *DiskStore) UpdateFile(ctx context.Context, path string, content []byte) error {
	abs, err := d.resolve(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	perm := fs.FileMode(0o644)
	if err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(abs, content, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// resolve joins path under root and rejects escapes.
func (d *DiskStore) resolve(path string) (string, error) {
	abs := filepath.Join(d.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(d.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes project root", path)
	}
	return abs, nil
}
