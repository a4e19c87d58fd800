// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"strconv"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/lfq"
)

type correlated[T any] struct {
	queue lfq.SPSC[kont.Either[error, T]]
	slot  kont.Either[error, T]
}

// Correlator pairs asynchronous starts with single redemptions by id.
// Start returns a correlation id immediately; Wait redeems it exactly once.
//
// A Correlator belongs to the single caller context. The started functions
// run on the dispatcher and hand their results back through one SPSC queue
// per id.
type Correlator[T any] struct {
	dispatch Dispatcher
	pending  map[Serial]*correlated[T]
	retired  map[Serial]struct{}
}

// NewCorrelator returns a correlator that runs work with d. A nil d runs
// work on new goroutines.
func NewCorrelator[T any](d Dispatcher) *Correlator[T] {
	if d == nil {
		d = GoDispatcher
	}
	c := &Correlator[T]{dispatch: d, pending: make(map[Serial]*correlated[T])}
	if checked {
		c.retired = make(map[Serial]struct{})
	}
	return c
}

// Start runs fn in the background and returns its correlation id.
func (c *Correlator[T]) Start(fn func() (T, error)) Serial {
	id := nextSerial()
	op := &correlated[T]{}
	op.queue.Init(completionCapacity)
	c.pending[id] = op
	pendingInflight.Inc()
	c.dispatch(func() {
		v, err := fn()
		outcome := outcomeResponse
		if err != nil {
			outcome = outcomeError
			op.slot = kont.Left[error, T](err)
		} else {
			op.slot = kont.Right[error](v)
		}
		pendingInflight.Dec()
		pendingResolved.WithLabelValues(outcome).Inc()
		if err := op.queue.Enqueue(&op.slot); err != nil {
			panic("hostcall: completion queue overflow")
		}
	})
	return id
}

// Wait redeems id, blocking until its work finishes.
// Redeeming an id twice, or an id this correlator never issued, panics.
func (c *Correlator[T]) Wait(id Serial) (T, error) {
	op := c.redeem(id)
	var bo iox.Backoff
	for {
		r, err := op.queue.Dequeue()
		if err == nil {
			if e, ok := r.GetLeft(); ok {
				var zero T
				return zero, e
			}
			v, _ := r.GetRight()
			return v, nil
		}
		bo.Wait()
	}
}

func (c *Correlator[T]) redeem(id Serial) *correlated[T] {
	op, ok := c.pending[id]
	if !ok {
		if checked {
			if _, ok := c.retired[id]; ok {
				panic("hostcall: correlation handle " + strconv.FormatUint(uint64(id), 10) + " redeemed twice")
			}
		}
		panic("hostcall: unknown correlation handle " + strconv.FormatUint(uint64(id), 10))
	}
	delete(c.pending, id)
	if checked {
		c.retired[id] = struct{}{}
	}
	return op
}

// Len returns the number of ids started and not yet redeemed.
func (c *Correlator[T]) Len() int { return len(c.pending) }
