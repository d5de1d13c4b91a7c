package harness

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// Time measures the wall-clock duration of fn. Only fn itself is inside
// the measured window.
func Time(label string, fn func()) Result {
	start := time.Now()
	fn()

	return newResult(label, time.Since(start))
}

// TimeErr is Time for functions that can fail. The Result is valid even
// when fn returns an error.
func TimeErr(label string, fn func() error) (Result, error) {
	var err error

	res := Time(label, func() { err = fn() })

	return res, err
}

// Runner times one workload invocation and records its allocations.
type Runner struct {
	Name   string
	Seed   uint64
	Params any
	Logger *slog.Logger
}

// NewRunner creates a Runner for the named workload.
func NewRunner(name string, seed uint64, params any, logger *slog.Logger) *Runner {
	return &Runner{
		Name:   name,
		Seed:   seed,
		Params: params,
		Logger: logger.With(slog.String("workload", name)),
	}
}

// Run executes body once and returns its measurement. Allocation counters
// are sampled outside the timed window.
func (r *Runner) Run(ctx context.Context, body func(context.Context) error) (*Result, error) {
	r.Logger.InfoContext(ctx, "starting workload",
		slog.Uint64("seed", r.Seed),
		slog.Any("params", r.Params),
	)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	res, err := TimeErr(r.Name, func() error { return body(ctx) })

	runtime.ReadMemStats(&after)

	if err != nil {
		return nil, fmt.Errorf("workload %s failed after %s: %w",
			r.Name, res.Elapsed.Round(time.Millisecond), err)
	}

	res.Seed = r.Seed
	res.Params = r.Params
	res.AllocBytes = after.TotalAlloc - before.TotalAlloc
	res.Mallocs = after.Mallocs - before.Mallocs

	r.Logger.InfoContext(ctx, "workload finished",
		slog.Duration("wall_time", res.Elapsed),
		slog.Uint64("alloc_bytes", res.AllocBytes),
	)

	return &res, nil
}
