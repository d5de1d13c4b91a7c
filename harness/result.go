// Package harness times workload invocations.
package harness

import "time"

// Result holds the measurement of one workload invocation.
type Result struct {
	Label      string        `json:"label"`
	Seed       uint64        `json:"seed"`
	Params     any           `json:"params,omitempty"`
	Elapsed    time.Duration `json:"-"`
	ElapsedMs  int64         `json:"elapsed_ms"`
	ElapsedNs  int64         `json:"elapsed_ns"`
	AllocBytes uint64        `json:"alloc_bytes"`
	Mallocs    uint64        `json:"mallocs"`
}

func newResult(label string, elapsed time.Duration) Result {
	return Result{
		Label:     label,
		Elapsed:   elapsed,
		ElapsedMs: elapsed.Milliseconds(),
		ElapsedNs: elapsed.Nanoseconds(),
	}
}
