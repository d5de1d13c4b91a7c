package workload

import (
	"context"
	"runtime"

	"github.com/weiihann/bencher/rng"
	"golang.org/x/sync/errgroup"
)

// Input chunks per worker.
const chunksPerWorker = 4

// ParallelMap doubles every element, expands each into expandSize copies,
// keeps the even values, and returns the materialized result. Work is
// spread over GOMAXPROCS workers.
func ParallelMap(ctx context.Context, data []rng.Uint128, expandSize int) ([]rng.Uint128, error) {
	return ParallelMapWorkers(ctx, data, expandSize, runtime.GOMAXPROCS(0))
}

// ParallelMapWorkers is ParallelMap with an explicit worker count. The
// result holds the same values for any worker count; chunk outputs are
// concatenated in input order.
func ParallelMapWorkers(
	ctx context.Context,
	data []rng.Uint128,
	expandSize int,
	workers int,
) ([]rng.Uint128, error) {
	workers = max(workers, 1)

	chunks := splitChunks(len(data), workers*chunksPerWorker)
	parts := make([][]rng.Uint128, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			parts[i] = mapChunk(data[c.start:c.end], expandSize)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}

	out := make([]rng.Uint128, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out, nil
}

func mapChunk(in []rng.Uint128, expandSize int) []rng.Uint128 {
	out := make([]rng.Uint128, 0, len(in)*expandSize)

	for _, x := range in {
		doubled := x.Add(x)

		expanded := make([]rng.Uint128, 0, expandSize)
		for range expandSize {
			expanded = append(expanded, doubled)
		}

		for _, v := range expanded {
			if v.IsEven() {
				out = append(out, v)
			}
		}
	}

	return out
}

type chunk struct {
	start, end int
}

func splitChunks(n, parts int) []chunk {
	if n == 0 || parts <= 0 {
		return nil
	}

	size := (n + parts - 1) / parts
	chunks := make([]chunk, 0, parts)

	for start := 0; start < n; start += size {
		chunks = append(chunks, chunk{start: start, end: min(start+size, n)})
	}

	return chunks
}
