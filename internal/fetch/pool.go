package fetch

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// FetchAll resolves every target under a bounded pool of workers. The
// returned slice is indexed like targets: each slot is written exactly once
// by the worker that produced it and read only after all workers have
// joined, so no synchronization beyond the WaitGroup is needed. Completion
// order is unspecified; slot order is not.
func (f *Fetcher) FetchAll(ctx context.Context, targets []string, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(targets) {
		workers = len(targets)
	}

	results := make([]Result, len(targets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = f.Fetch(ctx, targets[i])
				f.logger.Info("fetched target",
					zap.String("url", results[i].Target),
					zap.Int("status", results[i].StatusCode),
					zap.Duration("elapsed", results[i].Elapsed),
					zap.String("error", results[i].Err),
				)
			}
		}()
	}
	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
