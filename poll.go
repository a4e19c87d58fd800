// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

type pollTag uint8

const (
	pollPending pollTag = iota
	pollResponse
	pollError
)

// PollResult is the outcome of one [PendingRequest.Poll]: exactly one of a
// still-pending request, a response, or an error. The Into methods consume
// the result; asking for a variant it does not hold panics.
type PollResult struct {
	owner
	tag     pollTag
	pending *PendingRequest
	resp    *Response
	err     *Error
}

// Poll consumes p and makes one non-blocking attempt to take the response.
// If the exchange is unresolved, the result holds a fresh PendingRequest
// for the same exchange.
func (p *PendingRequest) Poll() *PollResult {
	p.take("PendingRequest")
	c, ok := p.op.poll()
	if !ok {
		return &PollResult{tag: pollPending, pending: &PendingRequest{op: p.op}}
	}
	resp, err := unpack(c)
	if err != nil {
		return &PollResult{tag: pollError, err: AsError(err)}
	}
	return &PollResult{tag: pollResponse, resp: resp}
}

// IsPending reports whether the exchange is still unresolved.
func (r *PollResult) IsPending() bool {
	r.borrow("PollResult")
	return r.tag == pollPending
}

// IsResponse reports whether the result holds a response.
func (r *PollResult) IsResponse() bool {
	r.borrow("PollResult")
	return r.tag == pollResponse
}

// IsError reports whether the exchange failed.
func (r *PollResult) IsError() bool {
	r.borrow("PollResult")
	return r.tag == pollError
}

// IntoPending consumes r and returns the fresh PendingRequest.
func (r *PollResult) IntoPending() *PendingRequest {
	r.into(pollPending, "pending")
	return r.pending
}

// IntoResponse consumes r and returns the response.
func (r *PollResult) IntoResponse() *Response {
	r.into(pollResponse, "a response")
	return r.resp
}

// IntoError consumes r and returns the failure.
func (r *PollResult) IntoError() *Error {
	r.into(pollError, "an error")
	return r.err
}

func (r *PollResult) into(tag pollTag, what string) {
	r.take("PollResult")
	if r.tag != tag {
		panic("hostcall: PollResult is not " + what)
	}
}

// Release drops the result and whatever it holds.
func (r *PollResult) Release() {
	if r.consumed {
		return
	}
	r.consumed = true
	switch r.tag {
	case pollPending:
		r.pending.Release()
	case pollResponse:
		r.resp.Release()
	}
}
