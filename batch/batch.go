// Package batch stems many words concurrently.
package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest run of words given to one goroutine and the
// interval at which ctx is checked.
const minChunk = 64

// Stem applies fn to every word using up to workers goroutines and returns
// the results in input order. workers <= 0 means GOMAXPROCS. The only error
// is ctx's.
func Stem(ctx context.Context, words []string, fn func(string) string, workers int) ([]string, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]string, len(words))
	if len(words) == 0 {
		return out, ctx.Err()
	}

	chunk := (len(words) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(words); lo += chunk {
		lo := lo // per-iteration copy; go.mod targets go1.21 loop semantics
		hi := min(lo+chunk, len(words))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out[i] = fn(words[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
