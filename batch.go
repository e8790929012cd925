package mp4san

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SanitizeBatch runs SanitizeContext over each of inputs, allowing up to
// concurrency calls to run at once. It returns one result and one error per
// input, in the same order as inputs; a failure sanitizing one input never
// prevents the others from completing. If ctx is canceled before an input's
// turn arrives, that input fails with ctx.Err() instead of running.
func SanitizeBatch(ctx context.Context, inputs []ByteSource, concurrency int) ([]*SanitizedMetadata, []error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*SanitizedMetadata, len(inputs))
	errs := make([]error, len(inputs))

	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup

	for i, in := range inputs {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			continue
		}
		wg.Add(1)
		go func(i int, in ByteSource) {
			defer wg.Done()
			defer sem.Release(1)
			results[i], errs[i] = SanitizeContext(ctx, in)
		}(i, in)
	}
	wg.Wait()

	return results, errs
}
