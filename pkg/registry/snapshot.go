package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Snapshot is a portable JSON export of one project's registry state. It is
// the interchange format between environments; the SQLite database stays
// local.
type Snapshot struct {
	ProjectID  string     `json:"project_id"`
	ExportedAt time.Time  `json:"exported_at"`
	Tokens     []*Token   `json:"tokens"`
	Versions   []*Version `json:"versions,omitempty"`
}

// Export collects the project's tokens and version history into a snapshot.
func Export(ctx context.Context, store Store, projectID string) (*Snapshot, error) {
	tokens, err := store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("export tokens: %w", err)
	}
	versions, err := store.ListVersions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("export versions: %w", err)
	}
	return &Snapshot{
		ProjectID:  projectID,
		ExportedAt: time.Now().UTC(),
		Tokens:     tokens,
		Versions:   versions,
	}, nil
}

// Import loads a snapshot into the store. Token names that already exist in
// the target project surface as create errors; a snapshot is meant for a
// fresh project, not a merge.
func Import(ctx context.Context, store Store, snap *Snapshot) error {
	if snap.ProjectID == "" {
		return fmt.Errorf("snapshot has no project id")
	}
	for _, t := range snap.Tokens {
		cp := *t
		cp.ProjectID = snap.ProjectID
		if err := store.CreateToken(ctx, &cp); err != nil {
			return fmt.Errorf("import token %q: %w", t.Name, err)
		}
	}
	for _, v := range snap.Versions {
		cp := *v
		cp.ProjectID = snap.ProjectID
		if err := store.CreateVersion(ctx, &cp); err != nil {
			return fmt.Errorf("import version %d: %w", v.VersionNumber, err)
		}
	}
	return nil
}

// WriteSnapshot serializes a snapshot to path with stable indentation so it
// diffs cleanly under version control.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads and sanity-checks a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.ProjectID == "" {
		return nil, fmt.Errorf("snapshot %s has no project id", path)
	}
	for i, t := range snap.Tokens {
		if t.Name == "" {
			return nil, fmt.Errorf("snapshot %s: token %d has no name", path, i)
		}
	}
	return &snap, nil
}
