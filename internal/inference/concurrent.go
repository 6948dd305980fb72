package inference

import (
	"context"
	"runtime"

	"fjacquet/txn-classifier/internal/logging"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the batch size from which work is split across workers.
const DefaultParallelThreshold = 256

// ConcurrentProcessor runs an indexed function over a batch, sequentially for
// small batches and in contiguous chunks across workers for large ones.
type ConcurrentProcessor struct {
	logger      logging.Logger
	workerCount int
	threshold   int
}

// NewConcurrentProcessor creates a processor. Non-positive values select the
// defaults: one worker per CPU and DefaultParallelThreshold.
func NewConcurrentProcessor(logger logging.Logger, workers, threshold int) *ConcurrentProcessor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if threshold <= 0 {
		threshold = DefaultParallelThreshold
	}
	return &ConcurrentProcessor{
		logger:      logger,
		workerCount: workers,
		threshold:   threshold,
	}
}

// Process calls fn for every index in [0,n). fn must only write state owned
// by its index. The first error cancels the remaining work and is returned.
func (cp *ConcurrentProcessor) Process(ctx context.Context, n int, fn func(i int) error) error {
	if n < cp.threshold || cp.workerCount == 1 {
		return cp.processSequential(ctx, 0, n, fn)
	}
	return cp.processConcurrent(ctx, n, fn)
}

func (cp *ConcurrentProcessor) processSequential(ctx context.Context, start, end int, fn func(i int) error) error {
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

func (cp *ConcurrentProcessor) processConcurrent(ctx context.Context, n int, fn func(i int) error) error {
	chunkSize := (n + cp.workerCount - 1) / cp.workerCount

	g, gctx := errgroup.WithContext(ctx)
	chunks := 0
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		chunks++
		g.Go(func() error {
			return cp.processSequential(gctx, start, end, fn)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	cp.logger.Debug("Concurrent processing completed",
		logging.Field{Key: logging.FieldCount, Value: n},
		logging.Field{Key: "chunks", Value: chunks},
		logging.Field{Key: "workers", Value: cp.workerCount})
	return nil
}
