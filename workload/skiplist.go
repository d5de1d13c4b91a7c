package workload

import (
	"sync"
	"sync/atomic"

	"github.com/bytedance/gopkg/collection/skipset"
	"github.com/weiihann/bencher/rng"
)

// SkipList starts p.Thread workers that share one concurrent skip set.
// Worker i draws keys from its own stream seeded with DeriveSeed(seed, i)
// and performs p.Insertion inserts, p.Deletion removals, then p.Insertion
// more inserts. SkipList returns once every worker has finished, along with
// the number of workers that ran their full sequence.
//
// The set does its own synchronization; the only ordering the harness
// imposes is the final join.
func SkipList(seed uint64, p SkipListParams) (*skipset.Uint64Set, int) {
	set := skipset.NewUint64()

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)

	for i := range p.Thread {
		wg.Add(1)

		go func() {
			defer wg.Done()

			stream := rng.New(rng.DeriveSeed(seed, i))

			for range p.Insertion {
				set.Add(stream.Uint64())
			}
			for range p.Deletion {
				set.Remove(stream.Uint64())
			}
			for range p.Insertion {
				set.Add(stream.Uint64())
			}

			completed.Add(1)
		}()
	}

	wg.Wait()

	return set, int(completed.Load())
}
