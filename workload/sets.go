package workload

import (
	"github.com/google/btree"
	"github.com/weiihann/bencher/rng"
)

// Fan-out of the ordered set's B-tree nodes.
const btreeDegree = 32

// OrderedSet runs p.Iteration rounds of p.Insertion inserts followed by
// p.Deletion removals against a B-tree set. Every key is a fresh draw from
// stream; removing an absent key is a no-op.
func OrderedSet(stream *rng.Stream, p SetParams) *btree.BTreeG[rng.Uint128] {
	set := btree.NewG[rng.Uint128](btreeDegree, rng.Uint128.Less)

	for range p.Iteration {
		for range p.Insertion {
			set.ReplaceOrInsert(stream.Uint128())
		}
		for range p.Deletion {
			set.Delete(stream.Uint128())
		}
	}

	return set
}

// HashSet is OrderedSet backed by a hash set.
func HashSet(stream *rng.Stream, p SetParams) map[rng.Uint128]struct{} {
	set := make(map[rng.Uint128]struct{})

	for range p.Iteration {
		for range p.Insertion {
			set[stream.Uint128()] = struct{}{}
		}
		for range p.Deletion {
			delete(set, stream.Uint128())
		}
	}

	return set
}
