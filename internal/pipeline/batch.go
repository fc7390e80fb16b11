package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/metrodemo/internal/model"
)

// DefaultBatchConcurrency is the number of work directories built at once.
// Each build already loads its photos in parallel.
const DefaultBatchConcurrency = 2

// BatchProcessor builds several work directories concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each work directory.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent builds.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed builds in input order.
	// Access is synchronized via mutex.
	results []*model.Build
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent builds.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each work directory so that
// pipeline state never leaks between builds.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
		results:         make([]*model.Build, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch builds every work directory, at most concurrency at a time.
//
// Returns all builds in input order, including failed ones; a failed
// build carries its error. The error return is set only when the batch
// was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, workDirs []string) ([]*model.Build, error) {
	bp.logger.Info("starting batch processing",
		"total_work_dirs", len(workDirs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.mu.Lock()
	bp.results = make([]*model.Build, len(workDirs))
	bp.mu.Unlock()

	err := bp.run(ctx, workDirs, func(build *model.Build, index int) {
		bp.mu.Lock()
		bp.results[index] = build
		bp.mu.Unlock()
	})

	bp.logger.Info("batch processing complete",
		"total_work_dirs", len(workDirs),
		"elapsed", time.Since(startTime),
	)

	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.results, err
}

// ProcessBatchWithCallback builds every work directory and calls callback
// as each build finishes, in completion order. The callback runs on the
// goroutine that finished the build and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	workDirs []string,
	callback func(build *model.Build, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_work_dirs", len(workDirs),
		"concurrency", bp.concurrency,
	)

	return bp.run(ctx, workDirs, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, workDirs []string, done func(*model.Build, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, workDir := range workDirs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("building work directory",
				"work_dir", workDir,
				"index", i+1,
				"total", len(workDirs),
			)

			build := model.NewBuild(workDir)
			if err := bp.pipelineFactory().Execute(ctx, build); err != nil {
				// recorded in the build; other work directories keep going
				bp.logger.Warn("build failed",
					"work_dir", workDir,
					"error", err,
				)
			} else {
				bp.logger.Info("build completed", "work_dir", workDir)
			}

			done(build, i)
			return nil
		})
	}

	return g.Wait()
}
