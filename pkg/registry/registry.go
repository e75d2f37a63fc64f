// Package registry defines the persisted token and version entities and
// the store contract the pipeline consumes. The hosting application brings
// its own store; MemoryStore and SQLiteStore cover tests and CLI use.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/gnana997/tokensync/pkg/token"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("registry: not found")

// Token is a persisted design token with provenance.
type Token struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"` // unique per project
	Category    token.Category  `json:"category"`
	Value       string          `json:"value"`
	Aliases     []string        `json:"aliases,omitempty"`
	Description string          `json:"description,omitempty"`
	Metadata    *token.Metadata `json:"metadata,omitempty"`

	// SemanticParentID points at the token this one references through a
	// variable indirection. Set by the alias pass after the whole batch
	// exists, because forward references are legal inside one batch.
	SemanticParentID string `json:"semantic_parent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangeSet is what one version snapshot records: exactly the changes that
// produced it, enough to compute an inverse for replace/rename.
type ChangeSet struct {
	TokenChanges     []token.TokenChange `json:"token_changes"`
	FilesModified    []string            `json:"files_modified"`
	InstancesChanged int                 `json:"instances_changed"`
}

// Version is a persisted snapshot of one atomic apply.
type Version struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	VersionNumber int       `json:"version_number"` // monotonic per project
	Changes       ChangeSet `json:"changes"`
	AuthorID      string    `json:"author_id"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store is the registry contract. Errors propagate to callers as-is; only
// the callers that the drift/apply contracts explicitly allow to degrade
// treat fetch failures as "no tokens available".
type Store interface {
	CreateToken(ctx context.Context, t *Token) error
	GetToken(ctx context.Context, id string) (*Token, error)
	UpdateToken(ctx context.Context, t *Token) error
	DeleteToken(ctx context.Context, id string) error
	FindByName(ctx context.Context, projectID, name string) (*Token, error)
	ListByProject(ctx context.Context, projectID string) ([]*Token, error)
	ListByCategory(ctx context.Context, projectID string, cat token.Category) ([]*Token, error)

	CreateVersion(ctx context.Context, v *Version) error
	LatestVersion(ctx context.Context, projectID string) (*Version, error)
	GetVersion(ctx context.Context, id string) (*Version, error)
	ListVersions(ctx context.Context, projectID string) ([]*Version, error)
}
