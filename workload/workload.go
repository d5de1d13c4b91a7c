// Package workload implements the benchmarked units of work. Each workload
// is a function of explicit parameters and an injected random stream; its
// output is discarded by the harness and only returned so tests can check
// it.
package workload

import (
	"context"
	"fmt"

	"github.com/weiihann/bencher/rng"
)

// Kind names a workload. It doubles as the CLI subcommand.
type Kind string

const (
	KindParallelMap Kind = "parallel-map"
	KindOrderedSet  Kind = "ordered-set"
	KindJSONParse   Kind = "json-parse"
	KindHashSet     Kind = "hash-set"
	KindSkipList    Kind = "skiplist"
	KindActor       Kind = "actor"
	KindScript      Kind = "script"
)

// Kinds returns every workload kind in CLI order.
func Kinds() []Kind {
	return []Kind{
		KindParallelMap, KindOrderedSet, KindJSONParse, KindHashSet,
		KindSkipList, KindActor, KindScript,
	}
}

// Params is the parameter set of one workload. Exactly one Params value is
// selected per process run.
type Params interface {
	Kind() Kind
	Validate() error
}

// ParallelMapParams configures the parallel map/expand/filter workload.
type ParallelMapParams struct {
	BaseSize   int `json:"base_size"`
	ExpandSize int `json:"expand_size"`
}

// SetParams configures the ordered-set and hash-set workloads.
type SetParams struct {
	Iteration int `json:"iteration"`
	Insertion int `json:"insertion"`
	Deletion  int `json:"deletion"`
}

// OrderedSetParams selects the ordered-set workload.
type OrderedSetParams struct{ SetParams }

// HashSetParams selects the hash-set workload.
type HashSetParams struct{ SetParams }

// JSONParseParams configures the JSON parsing workload.
type JSONParseParams struct {
	Iteration int `json:"iteration"`
}

// SkipListParams configures the concurrent skip list workload.
type SkipListParams struct {
	Thread    int `json:"thread"`
	Insertion int `json:"insertion"`
	Deletion  int `json:"deletion"`
}

// ActorParams configures the actor round-trip workload.
type ActorParams struct {
	Iteration int `json:"iteration"`
}

func (ParallelMapParams) Kind() Kind { return KindParallelMap }
func (OrderedSetParams) Kind() Kind  { return KindOrderedSet }
func (JSONParseParams) Kind() Kind   { return KindJSONParse }
func (HashSetParams) Kind() Kind     { return KindHashSet }
func (SkipListParams) Kind() Kind    { return KindSkipList }
func (ActorParams) Kind() Kind       { return KindActor }

func (p ParallelMapParams) Validate() error {
	return nonNegative(p.Kind(),
		field{"base-size", p.BaseSize},
		field{"expand-size", p.ExpandSize},
	)
}

func (p SetParams) validate(kind Kind) error {
	return nonNegative(kind,
		field{"iteration", p.Iteration},
		field{"insertion", p.Insertion},
		field{"deletion", p.Deletion},
	)
}

func (p OrderedSetParams) Validate() error { return p.validate(p.Kind()) }
func (p HashSetParams) Validate() error    { return p.validate(p.Kind()) }

func (p JSONParseParams) Validate() error {
	return nonNegative(p.Kind(), field{"iteration", p.Iteration})
}

func (p SkipListParams) Validate() error {
	return nonNegative(p.Kind(),
		field{"thread", p.Thread},
		field{"insertion", p.Insertion},
		field{"deletion", p.Deletion},
	)
}

func (p ActorParams) Validate() error {
	return nonNegative(p.Kind(), field{"iteration", p.Iteration})
}

type field struct {
	name  string
	value int
}

func nonNegative(kind Kind, fields ...field) error {
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%s: %s must not be negative, got %d", kind, f.name, f.value)
		}
	}

	return nil
}

func DefaultParallelMap() ParallelMapParams {
	return ParallelMapParams{BaseSize: 200_000, ExpandSize: 1000}
}

func DefaultOrderedSet() OrderedSetParams {
	return OrderedSetParams{SetParams{Iteration: 20, Insertion: 500_000, Deletion: 150_000}}
}

func DefaultJSONParse() JSONParseParams {
	return JSONParseParams{Iteration: 1000}
}

func DefaultHashSet() HashSetParams {
	return HashSetParams{SetParams{Iteration: 30, Insertion: 1_000_000, Deletion: 150_000}}
}

func DefaultSkipList() SkipListParams {
	return SkipListParams{Thread: 12, Insertion: 200_000, Deletion: 50_000}
}

func DefaultActor() ActorParams {
	return ActorParams{Iteration: 500_000}
}

// Body is a prepared workload invocation. Everything it needs has already
// been built, so timing a Body measures only the workload itself.
type Body func(ctx context.Context) error

// Prepare validates p, builds the workload inputs from seed, and returns
// the body to time. The script workload is prepared by package script.
func Prepare(seed uint64, p Params) (Body, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p := p.(type) {
	case ParallelMapParams:
		data := make([]rng.Uint128, p.BaseSize)
		rng.New(seed).Fill(data)

		return func(ctx context.Context) error {
			_, err := ParallelMap(ctx, data, p.ExpandSize)

			return err
		}, nil

	case OrderedSetParams:
		stream := rng.New(seed)

		return func(context.Context) error {
			OrderedSet(stream, p.SetParams)

			return nil
		}, nil

	case HashSetParams:
		stream := rng.New(seed)

		return func(context.Context) error {
			HashSet(stream, p.SetParams)

			return nil
		}, nil

	case JSONParseParams:
		return func(context.Context) error {
			return JSONParse(p.Iteration)
		}, nil

	case SkipListParams:
		return func(context.Context) error {
			SkipList(seed, p)

			return nil
		}, nil

	case ActorParams:
		stream := rng.New(seed)

		return func(ctx context.Context) error {
			_, err := Actor(ctx, stream, p.Iteration)

			return err
		}, nil

	default:
		return nil, fmt.Errorf("workload %s cannot be prepared here", p.Kind())
	}
}
