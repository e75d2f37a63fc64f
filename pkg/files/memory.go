package files

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemStore seeds a store with the given path → content map.
func NewMemStore(seed map[string]string) *MemStore {
	m := &MemStore{files: make(map[string][]byte, len(seed))}
	for path, content := range seed {
		m.files[path] = []byte(content)
	}
	return m
}

func (m *MemStore) ListProjectFiles(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for path := range m.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemStore) GetFile(ctx context.Context, path string) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return &File{Path: path, Content: cp}, nil
}

func (m *MemStore) UpdateFile(ctx context.Context, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(content))
	copy(cp, content)
	m.files[path] = cp
	return nil
}
