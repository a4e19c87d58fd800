// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/lfq"
	"github.com/google/uuid"
)

// completionCapacity is the bounded capacity of a completion queue.
// Each queue carries exactly one record.
const completionCapacity = 2

// completion is the record the I/O side hands to the caller:
// Left on failure, Right on success.
type completion = kont.Either[error, *Response]

// inflight is the state shared by every PendingRequest issued for one
// send. The I/O side is the only producer and the caller the only consumer
// of queue.
type inflight struct {
	id      uuid.UUID
	backend string
	sent    *Request
	echo    *Request
	queue   lfq.SPSC[completion]
	slot    completion
}

func newInflight(backend string, r *Request) *inflight {
	op := &inflight{
		id:      uuid.New(),
		backend: backend,
		sent:    r.cloneHead(),
		echo:    r.cloneHead(),
	}
	op.queue.Init(completionCapacity)
	return op
}

// complete publishes the outcome. It runs on the I/O side, once.
func (op *inflight) complete(resp *Response, err error) {
	if err != nil {
		op.slot = kont.Left[error, *Response](AsError(err))
	} else {
		resp.backendName = op.backend
		resp.backendRequest = op.echo
		op.slot = kont.Right[error](resp)
	}
	if err := op.queue.Enqueue(&op.slot); err != nil {
		panic("hostcall: completion queue overflow")
	}
}

// poll is one non-blocking attempt to take the completion.
func (op *inflight) poll() (completion, bool) {
	c, err := op.queue.Dequeue()
	if err != nil {
		return c, false
	}
	return c, true
}

func unpack(c completion) (*Response, error) {
	if err, ok := c.GetLeft(); ok {
		return nil, err
	}
	resp, _ := c.GetRight()
	return resp, nil
}

// start hands the exchange to the dispatcher.
func (h *Host) start(op *inflight, cfg BackendConfig, out *Outgoing, done func()) {
	pendingInflight.Inc()
	h.logger.Debug("pending request started", "request_id", op.id.String(), "backend", op.backend, "method", out.Method)
	h.dispatch(func() {
		resp, err := h.transport.RoundTrip(context.Background(), cfg, out)
		if done != nil {
			done()
		}
		outcome := outcomeResponse
		if err != nil {
			outcome = outcomeError
		}
		pendingInflight.Dec()
		pendingResolved.WithLabelValues(outcome).Inc()
		h.logger.Debug("pending request resolved", "request_id", op.id.String(), "backend", op.backend, "outcome", outcome)
		if resp != nil && len(resp.dropped) > 0 {
			h.logger.Debug("invalid upstream header values dropped", "request_id", op.id.String(), "backend", op.backend, "headers", resp.dropped)
		}
		op.complete(resp, err)
	})
}

// PendingRequest is a handle to a request whose response has not yet been
// taken. Poll and Wait consume it; a still-pending poll returns a fresh
// PendingRequest for the same exchange.
//
// Releasing a PendingRequest without waiting does not cancel the exchange:
// the I/O completes in the background and its result is discarded.
type PendingRequest struct {
	owner
	op *inflight
}

// ID returns the identifier of the exchange, stable across re-issued
// handles.
func (p *PendingRequest) ID() uuid.UUID {
	p.borrow("PendingRequest")
	return p.op.id
}

// SentRequest returns a copy of the request as it was sent, without its
// body. The copy belongs to the caller.
func (p *PendingRequest) SentRequest() *Request {
	p.borrow("PendingRequest")
	return p.op.sent.cloneHead()
}

// Wait consumes p and blocks until the exchange resolves.
// Blocks via adaptive backoff (iox.Backoff) without creating channels.
func (p *PendingRequest) Wait() (*Response, error) {
	p.take("PendingRequest")
	var bo iox.Backoff
	for {
		if c, ok := p.op.poll(); ok {
			return unpack(c)
		}
		bo.Wait()
	}
}

// Release drops the handle. The exchange keeps running.
func (p *PendingRequest) Release() {
	p.consumed = true
}

// ErrPending is returned by [PendingRequest.TryWait] while the exchange is
// unresolved. It matches iox.ErrWouldBlock.
var ErrPending = iox.ErrWouldBlock

// TryWait is the non-blocking form of Wait for callers that drive their own
// loop. On ErrPending, p is left unconsumed and may be retried.
func (p *PendingRequest) TryWait() (*Response, error) {
	p.borrow("PendingRequest")
	c, ok := p.op.poll()
	if !ok {
		return nil, ErrPending
	}
	p.consumed = true
	return unpack(c)
}
