package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/tokensync/pkg/extractor"
	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/token"
	"github.com/gnana997/tokensync/pkg/util"
)

// FileJob is one file for the pool to extract.
type FileJob struct {
	Path  string
	JobID int
}

// FileResult carries the tokens extracted from one file.
type FileResult struct {
	Path   string
	Tokens []token.ExtractedToken
	JobID  int
}

// FileError reports a file the pool could not process. Extraction itself
// never fails; only reads do.
type FileError struct {
	Path  string
	Error error
}

// WorkerPool fans file extraction out over a fixed set of goroutines.
// Workers read through the file store and run the format extractors;
// inference stays single-threaded downstream.
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup

	store     files.Store
	extractor *extractor.Extractor
	logger    *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool builds a pool. numWorkers of 0 auto-sizes via
// util.GetOptimalPoolSize.
func NewWorkerPool(numWorkers int, store files.Store, ext *extractor.Extractor, logger *slog.Logger) *WorkerPool {
	numWorkers = util.GetOptimalPoolSizeWithOverride(numWorkers)
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		store:      store,
		extractor:  ext,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. Must be called before Submit.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("worker pool already started")
		return
	}

	wp.logger.Debug("starting extraction pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	file, err := wp.store.GetFile(wp.ctx, job.Path)
	if err != nil {
		wp.jobsFailed.Add(1)
		wp.errors <- FileError{Path: job.Path, Error: fmt.Errorf("read file: %w", err)}
		return
	}

	toks := wp.extractor.ExtractFile(job.Path, file.Content)
	wp.logger.Debug("extracted file", "worker_id", workerID, "file", job.Path, "tokens", len(toks))

	wp.jobsProcessed.Add(1)
	wp.results <- FileResult{Path: job.Path, Tokens: toks, JobID: job.JobID}
}

// Submit enqueues a job. Blocks when the buffer is full.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	wp.jobsSubmitted.Add(1)

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled")
	case wp.jobs <- job:
		return nil
	}
}

// Results returns the channel extraction results arrive on.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the channel read failures arrive on.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel so drained workers exit.
// Idempotent.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Wait blocks until every worker has exited. Call after FinishSubmitting.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop cancels in-flight work and waits for workers to exit.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}
	wp.cancel()
	wp.FinishSubmitting()
	wp.wg.Wait()
	wp.logger.Debug("extraction pool stopped",
		"submitted", wp.jobsSubmitted.Load(),
		"processed", wp.jobsProcessed.Load(),
		"failed", wp.jobsFailed.Load())
}

// Stats returns submitted/processed/failed counts.
func (wp *WorkerPool) Stats() (submitted, processed, failed int64) {
	return wp.jobsSubmitted.Load(), wp.jobsProcessed.Load(), wp.jobsFailed.Load()
}
