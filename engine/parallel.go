package engine

import (
	"fmt"
	"runtime"
	"sync"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/sampling"
)

// Task handles item i of a batch using the worker's own sampler.
type Task func(i int, s *sampling.Sampler) error

// Parallel runs fn for every i in [0, count) on a fixed pool of workers. Items are
// split into contiguous ranges and each worker draws from its own keyed source derived
// from master. A nil master draws a fresh one, so two calls never share randomness.
//
// workers <= 0 means runtime.GOMAXPROCS(0). The first error in item order is returned.
func Parallel(count, workers int, params lwe.Params, master []byte, fn Task) error {
	if count < 0 {
		return fmt.Errorf("%w: negative batch size %d", lwe.ErrInvalidParameter, count)
	}
	if count == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > count {
		workers = count
	}

	sources, err := sampling.NewWorkerSources(master, workers)
	if err != nil {
		return err
	}
	samplers := make([]*sampling.Sampler, workers)
	for w := range samplers {
		if samplers[w], err = sampling.NewSampler(params, sources[w]); err != nil {
			return err
		}
	}

	if workers == 1 {
		for i := 0; i < count; i++ {
			if err := fn(i, samplers[0]); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	perWorker := (count + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > count {
			end = count
		}
		if start >= count {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if err := fn(i, samplers[w]); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
