package workload

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/weiihann/bencher/rng"
)

// MessageLen is the number of values carried by one Sum message.
const MessageLen = 64

// ErrActorStopped is returned when calling an actor that has stopped.
var ErrActorStopped = errors.New("actor stopped")

// Sum asks an actor for the sum of its values.
type Sum [MessageLen]rng.Uint128

type envelope struct {
	msg   Sum
	reply chan *uint256.Int
}

// SumActor is a single goroutine that owns a mailbox and answers Sum
// messages one at a time.
type SumActor struct {
	mailbox chan envelope
	stop    chan struct{}
	done    chan struct{}
}

// StartSumActor starts a fresh actor.
func StartSumActor() *SumActor {
	a := &SumActor{
		mailbox: make(chan envelope),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go a.loop()

	return a
}

func (a *SumActor) loop() {
	defer close(a.done)

	for {
		select {
		case env := <-a.mailbox:
			env.reply <- sum(env.msg)
		case <-a.stop:
			return
		}
	}
}

// sum cannot overflow: 64 addends below 2^128 stay below 2^134.
func sum(msg Sum) *uint256.Int {
	total := new(uint256.Int)
	for _, v := range msg {
		total.Add(total, v.Uint256())
	}

	return total
}

// Call sends msg and waits for the reply.
func (a *SumActor) Call(ctx context.Context, msg Sum) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := envelope{msg: msg, reply: make(chan *uint256.Int, 1)}

	select {
	case a.mailbox <- env:
	case <-a.done:
		return nil, ErrActorStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop terminates the actor and waits for its goroutine to exit. Stop is
// not safe to call twice.
func (a *SumActor) Stop() {
	close(a.stop)
	<-a.done
}

// ActorStats counts what one Actor run did.
type ActorStats struct {
	Started int
	Replies int
}

// Actor runs iteration round trips. Each starts a fresh actor, sends it
// MessageLen fresh random values, awaits the sum, and discards it. A
// failed call aborts the run.
func Actor(ctx context.Context, stream *rng.Stream, iteration int) (ActorStats, error) {
	var (
		stats ActorStats
		msg   Sum
	)

	for range iteration {
		a := StartSumActor()
		stats.Started++

		stream.Fill(msg[:])

		_, err := a.Call(ctx, msg)
		a.Stop()

		if err != nil {
			return stats, fmt.Errorf("actor round trip %d: %w", stats.Started, err)
		}

		stats.Replies++
	}

	return stats, nil
}
