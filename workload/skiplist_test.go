package workload

import (
	"testing"

	"github.com/weiihann/bencher/rng"
)

func TestSkipListJoinsAllWorkers(t *testing.T) {
	tests := []struct {
		name string
		p    SkipListParams
	}{
		{"no workers", SkipListParams{Thread: 0, Insertion: 10, Deletion: 5}},
		{"one worker", SkipListParams{Thread: 1, Insertion: 100, Deletion: 20}},
		{"many workers", SkipListParams{Thread: 12, Insertion: 200, Deletion: 50}},
		{"empty work", SkipListParams{Thread: 8}},
		{"deletions only", SkipListParams{Thread: 4, Deletion: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, completed := SkipList(rng.DefaultSeed, tt.p)

			if completed != tt.p.Thread {
				t.Errorf("completed = %d, want %d", completed, tt.p.Thread)
			}

			if limit := 2 * tt.p.Insertion * tt.p.Thread; set.Len() > limit {
				t.Errorf("len = %d exceeds %d inserts", set.Len(), limit)
			}
		})
	}
}

func TestSkipListSingleWorkerDeterministic(t *testing.T) {
	const seed = 99

	p := SkipListParams{Thread: 1, Insertion: 50}
	set, _ := SkipList(seed, p)

	ref := rng.New(rng.DeriveSeed(seed, 0))
	distinct := make(map[uint64]struct{})

	for i := 0; i < 2*p.Insertion; i++ {
		k := ref.Uint64()
		distinct[k] = struct{}{}

		if !set.Contains(k) {
			t.Errorf("draw %d (%#x) missing from set", i, k)
		}
	}

	if set.Len() != len(distinct) {
		t.Errorf("len = %d, want %d", set.Len(), len(distinct))
	}
}

func TestSkipListWorkersUseDistinctStreams(t *testing.T) {
	set, _ := SkipList(7, SkipListParams{Thread: 4, Insertion: 100})

	// Identical streams would collapse onto 200 keys.
	if set.Len() <= 200 {
		t.Errorf("len = %d, want more than 200", set.Len())
	}
}
