package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gnana997/tokensync/pkg/token"
)

// MemoryStore is the reference Store implementation. Thread-safe; used by
// tests and ephemeral pipeline runs.
type MemoryStore struct {
	mu       sync.RWMutex
	tokens   map[string]*Token   // id → token
	versions map[string]*Version // id → version
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:   make(map[string]*Token),
		versions: make(map[string]*Version),
	}
}

func (s *MemoryStore) CreateToken(_ context.Context, t *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for _, existing := range s.tokens {
		if existing.ProjectID == t.ProjectID && existing.Name == t.Name {
			return fmt.Errorf("registry: token name %q already exists in project %s", t.Name, t.ProjectID)
		}
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	s.tokens[t.ID] = cloneToken(t)
	return nil
}

func (s *MemoryStore) GetToken(_ context.Context, id string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneToken(t), nil
}

func (s *MemoryStore) UpdateToken(_ context.Context, t *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tokens[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	s.tokens[t.ID] = cloneToken(t)
	return nil
}

func (s *MemoryStore) DeleteToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[id]; !ok {
		return ErrNotFound
	}
	delete(s.tokens, id)
	return nil
}

func (s *MemoryStore) FindByName(_ context.Context, projectID, name string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.ProjectID == projectID && t.Name == name {
			return cloneToken(t), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListByProject(_ context.Context, projectID string) ([]*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Token
	for _, t := range s.tokens {
		if t.ProjectID == projectID {
			out = append(out, cloneToken(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) ListByCategory(_ context.Context, projectID string, cat token.Category) ([]*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Token
	for _, t := range s.tokens {
		if t.ProjectID == projectID && t.Category == cat {
			out = append(out, cloneToken(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateVersion(_ context.Context, v *Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.VersionNumber == 0 {
		max := 0
		for _, existing := range s.versions {
			if existing.ProjectID == v.ProjectID && existing.VersionNumber > max {
				max = existing.VersionNumber
			}
		}
		v.VersionNumber = max + 1
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	s.versions[v.ID] = cloneVersion(v)
	return nil
}

func (s *MemoryStore) LatestVersion(_ context.Context, projectID string) (*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Version
	for _, v := range s.versions {
		if v.ProjectID != projectID {
			continue
		}
		if latest == nil || v.VersionNumber > latest.VersionNumber {
			latest = v
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneVersion(latest), nil
}

func (s *MemoryStore) GetVersion(_ context.Context, id string) (*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneVersion(v), nil
}

func (s *MemoryStore) ListVersions(_ context.Context, projectID string) ([]*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Version
	for _, v := range s.versions {
		if v.ProjectID == projectID {
			out = append(out, cloneVersion(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

// Clones keep callers from mutating store internals through returned
// pointers.

func cloneToken(t *Token) *Token {
	c := *t
	c.Aliases = append([]string(nil), t.Aliases...)
	return &c
}

func cloneVersion(v *Version) *Version {
	c := *v
	c.Changes.TokenChanges = append([]token.TokenChange(nil), v.Changes.TokenChanges...)
	c.Changes.FilesModified = append([]string(nil), v.Changes.FilesModified...)
	return &c
}
