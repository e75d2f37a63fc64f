// Package files abstracts project file access for the ingestion, drift and
// apply pipelines. The hosting application can bring its own store (a VFS,
// an API-backed theme store); DiskStore covers the CLI case.
package files

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested file does not exist in the store.
var ErrNotFound = errors.New("files: not found")

// File is one project file's content plus the path it was read from. Paths
// are slash-separated and relative to the project root.
type File struct {
	Path    string
	Content []byte
}

// Store is the file access contract. ListProjectFiles returns only files
// the pipeline knows how to process, already filtered by extension and
// exclude patterns.
type Store interface {
	ListProjectFiles(ctx context.Context) ([]string, error)
	GetFile(ctx context.Context, path string) (*File, error)
	UpdateFile(ctx context.Context, path string, content []byte) error
}
