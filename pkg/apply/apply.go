// Package apply performs impact analysis and the atomic read-all →
// validate-all → write-all transformation over a project's files, with
// version snapshots and inverse-based rollback. Concurrent applies to the
// same project are not coordinated here; the caller serializes them.
package apply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
)

// RollbackAuthor is the actor recorded on versions created by Rollback.
const RollbackAuthor = "system"

// DeploymentResult is the outcome of one atomic apply. Success false with
// an empty FilesModified means nothing was written; Success false with a
// non-empty list means a write failed after the validation gate and the
// listed files did change.
type DeploymentResult struct {
	Success          bool     `json:"success"`
	FilesModified    []string `json:"files_modified"`
	InstancesChanged int      `json:"instances_changed"`
	VersionID        string   `json:"version_id,omitempty"`
	Errors           []string `json:"errors,omitempty"`
}

// Applicator owns the apply and rollback paths.
type Applicator struct {
	files    files.Store
	registry registry.Store
	logger   *slog.Logger
}

// New builds an Applicator.
func New(fileStore files.Store, reg registry.Store, logger *slog.Logger) *Applicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applicator{files: fileStore, registry: reg, logger: logger}
}

// pendingWrite is one file's transformed content awaiting the write phase.
type pendingWrite struct {
	path      string
	content   []byte
	instances int
}

// Apply executes the change set atomically: every affected file is read and
// transformed in memory, every transformed file is validated, and only if
// all pass does any write happen. Cancellation is ignored once the write
// phase starts; partial application is worse than a late finish.
func (a *Applicator) Apply(ctx context.Context, projectID string, changes []token.TokenChange, authorID, description string) (*DeploymentResult, error) {
	if len(changes) == 0 {
		return &DeploymentResult{Success: true}, nil
	}

	matchers, err := compileMatchers(changes)
	if err != nil {
		return nil, err
	}

	paths, err := a.files.ListProjectFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}

	// Phase 1: read everything and transform in memory.
	var pending []pendingWrite
	for _, path := range paths {
		file, err := a.files.GetFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		content := file.Content
		instances := 0
		for _, m := range matchers {
			var n int
			content, n = m.rewrite(content)
			instances += n
		}
		if instances == 0 {
			continue
		}
		pending = append(pending, pendingWrite{path: path, content: content, instances: instances})
	}

	if len(pending) == 0 {
		return &DeploymentResult{Success: true}, nil
	}

	// Phase 2: validate every modified file. Any failure aborts the whole
	// batch before a single write.
	var validationErrors []string
	for _, pw := range pending {
		res := validateContent(pw.path, pw.content)
		if !res.Valid {
			for _, e := range res.Errors {
				validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", pw.path, e))
			}
		}
	}
	if len(validationErrors) > 0 {
		a.logger.Warn("apply aborted by validation", "project", projectID, "errors", len(validationErrors))
		return &DeploymentResult{Success: false, Errors: validationErrors}, nil
	}

	// Phase 3: write everything. Failures here are reported with the files
	// that did write; the validation gate has passed and retrying is the
	// caller's call.
	result := &DeploymentResult{Success: true}
	for _, pw := range pending {
		if err := a.files.UpdateFile(ctx, pw.path, pw.content); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("write %s: %v", pw.path, err))
			continue
		}
		result.FilesModified = append(result.FilesModified, pw.path)
		result.InstancesChanged += pw.instances
	}

	if !result.Success {
		a.logger.Error("apply finished with partial writes",
			"project", projectID,
			"written", len(result.FilesModified),
			"failed", len(result.Errors))
		return result, nil
	}

	// Snapshot is best-effort: a registry hiccup after a clean apply must
	// not fail the deployment, but it has to be visible to operators.
	version := &registry.Version{
		ProjectID: projectID,
		Changes: registry.ChangeSet{
			TokenChanges:     changes,
			FilesModified:    result.FilesModified,
			InstancesChanged: result.InstancesChanged,
		},
		AuthorID:    authorID,
		Description: description,
	}
	if err := a.registry.CreateVersion(ctx, version); err != nil {
		a.logger.Error("failed to record version snapshot",
			"project", projectID,
			"files", len(result.FilesModified),
			"error", err)
	} else {
		result.VersionID = version.ID
	}

	a.logger.Info("apply finished",
		"project", projectID,
		"files", len(result.FilesModified),
		"instances", result.InstancesChanged,
		"version", result.VersionID)
	return result, nil
}

// Rollback inverts the changes recorded on versionID and re-applies them
// under the system actor. Versions containing a delete are not invertible
// and fail loudly.
func (a *Applicator) Rollback(ctx context.Context, projectID, versionID string) (*DeploymentResult, error) {
	version, err := a.registry.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("fetch version %s: %w", versionID, err)
	}
	if version.ProjectID != projectID {
		return nil, fmt.Errorf("version %s belongs to project %s, not %s", versionID, version.ProjectID, projectID)
	}

	inverted := make([]token.TokenChange, 0, len(version.Changes.TokenChanges))
	for _, change := range version.Changes.TokenChanges {
		inv, err := change.Invert()
		if err != nil {
			return nil, fmt.Errorf("version %s is not invertible: %w", versionID, err)
		}
		inverted = append(inverted, inv)
	}

	description := fmt.Sprintf("rollback of version %d", version.VersionNumber)
	return a.Apply(ctx, projectID, inverted, RollbackAuthor, description)
}
