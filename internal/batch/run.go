package batch

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/logger"
)

// Run processes jobs on a pool of workers (one per CPU when workers is 0)
// and returns results in job order. Cancelling ctx fails jobs that have not
// started yet.
func Run(ctx context.Context, workers int, jobs []Job) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(jobs), 1))

	log := logger.Named("batch")
	results := make([]Result, len(jobs))
	var processed atomic.Int64
	start := time.Now()

	pool := pond.NewPool(workers)
	for i := range jobs {
		pool.Submit(func() {
			results[i] = Process(ctx, jobs[i])
			p := processed.Add(1)
			log.Debug("progress", zap.Int64("done", p), zap.Int("total", len(jobs)))
		})
	}
	pool.StopAndWait()

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	log.Info("batch finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", failed),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))
	return results
}
