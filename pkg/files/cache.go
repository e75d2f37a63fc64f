package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// mappedFile holds one mmap'd file. Data is nil for empty files and for
// files that fell back to a plain read.
type mappedFile struct {
	data     mmap.MMap
	fallback []byte
	file     *os.File
}

func (m *mappedFile) bytes() []byte {
	if m.data != nil {
		return m.data
	}
	return m.fallback
}

func (m *mappedFile) close() {
	if m.data != nil {
		m.data.Unmap()
	}
	if m.file != nil {
		m.file.Close()
	}
}

// CachedReader wraps a DiskStore with an mmap-backed LRU read cache. Impact
// analysis rereads the same files across many candidate changes; mapping
// them once keeps that loop off the page cache syscall path.
//
// Content returned by GetFile aliases the mapping and is only valid until
// the entry is evicted or updated. Callers that retain content must copy.
type CachedReader struct {
	disk *DiskStore
	log  *slog.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *mappedFile]

	hits, misses, mmapFailures int64
}

// NewCachedReader builds a reader keeping at most maxEntries mappings alive.
func NewCachedReader(disk *DiskStore, maxEntries int, log *slog.Logger) (*CachedReader, error) {
	if log == nil {
		log = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = 512
	}
	cache, err := lru.NewWithEvict[string, *mappedFile](maxEntries, func(key string, mf *mappedFile) {
		mf.close()
	})
	if err != nil {
		return nil, err
	}
	return &CachedReader{disk: disk, log: log, cache: cache}, nil
}

func (c *CachedReader) ListProjectFiles(ctx context.Context) ([]string, error) {
	return c.disk.ListProjectFiles(ctx)
}

func (c *CachedReader) GetFile(ctx context.Context, path string) (*File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mf, ok := c.cache.Get(path); ok {
		c.hits++
		return &File{Path: path, Content: mf.bytes()}, nil
	}
	c.misses++

	abs, err := c.disk.resolve(path)
	if err != nil {
		return nil, err
	}
	mf, err := c.load(abs, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, mf)
	return &File{Path: path, Content: mf.bytes()}, nil
}

// UpdateFile writes through to disk and drops the stale mapping.
func (c *CachedReader) UpdateFile(ctx context.Context, path string, content []byte) error {
	if err := c.disk.UpdateFile(ctx, path, content); err != nil {
		return err
	}
	c.mu.Lock()
	c.cache.Remove(path)
	c.mu.Unlock()
	return nil
}

// Close unmaps every cached file.
func (c *CachedReader) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Stats reports hit/miss/fallback counters for observability.
func (c *CachedReader) Stats() (hits, misses, mmapFailures int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.mmapFailures
}

func (c *CachedReader) load(abs, path string) (*mappedFile, error) {
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	// Zero-length regions cannot be mapped.
	if info.Size() == 0 {
		f.Close()
		return &mappedFile{}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Fall back to a plain read; some filesystems refuse mmap.
		c.mmapFailures++
		c.log.Warn("mmap failed, falling back to read", "path", path, "error", err)
		content, readErr := os.ReadFile(abs)
		f.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		return &mappedFile{fallback: content}, nil
	}
	return &mappedFile{data: data, file: f}, nil
}
