package ecdsarecovery

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/ecdsa-recovery/internal/logging"
)

// progressInterval is how often, in records, the batch engine logs progress.
const progressInterval = 1000

// BatchConfig configures parallel recovery.
type BatchConfig struct {
	// NumWorkers controls parallelization (0 = runtime.NumCPU()).
	NumWorkers int

	// StopOnError aborts the batch at the first failing record instead of
	// recording the error and continuing.
	StopOnError bool
}

// DefaultBatchConfig returns a sensible default configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		NumWorkers:  0, // auto-detect
		StopOnError: false,
	}
}

// BatchResult is the outcome for one record. Exactly one of Result and Err is
// set.
type BatchResult struct {
	Index  int
	Result *RecoveryResult
	Err    error
}

// BatchRecoverer runs a RecoveryStrategy over many records in parallel.
type BatchRecoverer struct {
	strategy RecoveryStrategy
	config   BatchConfig
	logger   logging.Logger
}

// NewBatchRecoverer creates a batch engine for strategy with default settings.
func NewBatchRecoverer(strategy RecoveryStrategy) *BatchRecoverer {
	return &BatchRecoverer{
		strategy: strategy,
		config:   DefaultBatchConfig(),
		logger:   logging.Nop(),
	}
}

// WithConfig sets the batch configuration.
func (b *BatchRecoverer) WithConfig(config BatchConfig) *BatchRecoverer {
	b.config = config
	return b
}

// WithLogger sets the logger used for progress and failures.
func (b *BatchRecoverer) WithLogger(logger logging.Logger) *BatchRecoverer {
	b.logger = logger
	return b
}

// Recover recovers every record and returns one result per record, in input
// order. The returned error is non-nil only when the context is cancelled or,
// with StopOnError, when a record fails; records that were never processed
// then carry that error.
func (b *BatchRecoverer) Recover(ctx context.Context, records []*SignedRecord) ([]BatchResult, error) {
	results := make([]BatchResult, len(records))
	for i := range results {
		results[i].Index = i
	}
	if len(records) == 0 {
		return results, nil
	}

	numWorkers := b.config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(records) {
		numWorkers = len(records)
	}

	logger := b.logger.With("batch_id", uuid.NewString())
	logger.Info(ctx, "starting batch recovery",
		"records", len(records), "workers", numWorkers, "strategy", b.strategy.Name())

	var processed, failed int64
	g, gctx := errgroup.WithContext(ctx)
	work := make(chan int, numWorkers*2)

	// Generate work
	g.Go(func() error {
		defer close(work)
		for i := range records {
			select {
			case <-gctx.Done():
				return nil
			case work <- i:
			}
		}
		return nil
	})

	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			for i := range work {
				// Each worker writes only its own index.
				res, err := b.strategy.Recover(gctx, records[i])
				results[i].Result, results[i].Err = res, err

				done := atomic.AddInt64(&processed, 1)
				if done%progressInterval == 0 {
					logger.Debug(gctx, "batch progress", "processed", done, "total", len(records))
				}
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Warn(gctx, "record recovery failed", "index", i, "error", err)
					if b.config.StopOnError {
						return err
					}
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		for i := range results {
			if results[i].Result == nil && results[i].Err == nil {
				results[i].Err = err
			}
		}
	}

	logger.Info(ctx, "batch recovery finished",
		"processed", atomic.LoadInt64(&processed), "failed", atomic.LoadInt64(&failed))
	return results, err
}
