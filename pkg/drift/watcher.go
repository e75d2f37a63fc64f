package drift

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/tokensync/pkg/files"
)

// WatchOptions configures the drift watcher.
type WatchOptions struct {
	// DebounceMs groups rapid successive writes to one file; only the
	// last event inside the window triggers detection. 0 means 200ms.
	DebounceMs int
}

// Watcher re-runs single-file drift detection when a watched file changes.
// Results go to the callback; they are advisory and unordered across files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	detector *Detector
	store    files.Store
	logger   *slog.Logger
	options  WatchOptions

	projectID string
	root      string
	onResult  func(path string, items []Item)

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher builds a watcher over root for projectID. onResult receives the
// drift items each time a supported file settles after a change.
func NewWatcher(detector *Detector, store files.Store, projectID, root string, options WatchOptions, logger *slog.Logger, onResult func(path string, items []Item)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if options.DebounceMs == 0 {
		options.DebounceMs = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:        fsw,
		detector:       detector,
		store:          store,
		logger:         logger,
		options:        options,
		projectID:      projectID,
		root:           root,
		onResult:       onResult,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins processing events in the
// background.
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set up watches: %w", err)
	}

	w.logger.Info("drift watcher started", "root", w.root)
	go w.eventLoop()
	return nil
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("drift watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	path := event.Name
	if shouldIgnoreDir(filepath.Dir(path)) || !supportedFile(path) {
		return
	}
	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.debounceDetect(path)
}

func (w *Watcher) debounceDetect(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}
	w.debounceTimers[path] = time.AfterFunc(
		time.Duration(w.options.DebounceMs)*time.Millisecond,
		func() {
			w.detectFile(path)
			w.debounceMu.Lock()
			delete(w.debounceTimers, path)
			w.debounceMu.Unlock()
		},
	)
}

func (w *Watcher) detectFile(path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	file, err := w.store.GetFile(context.Background(), rel)
	if err != nil {
		w.logger.Warn("failed to read changed file", "file", rel, "error", err)
		return
	}
	items, err := w.detector.DetectFile(context.Background(), w.projectID, rel, file.Content)
	if err != nil {
		w.logger.Warn("drift detection failed", "file", rel, "error", err)
		return
	}
	if w.onResult != nil {
		w.onResult(rel, items)
	}
}

func supportedFile(path string) bool {
	switch filepath.Ext(path) {
	case ".css", ".scss", ".liquid", ".js", ".mjs", ".ts", ".json":
		return true
	}
	return false
}

func shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	switch base {
	case "node_modules", ".git", "dist", "build", "vendor":
		return true
	}
	return false
}
