// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import "code.hybscloud.com/hostcall"

var (
	pendings    = hostcall.NewTable[hostcall.PendingRequest]("Pending")
	pollResults = hostcall.NewTable[hostcall.PollResult]("PollResult")
)

// PendingPoll consumes p and returns a PollResult handle.
func PendingPoll(p Handle) Handle {
	return pollResults.Insert(pendings.Take(p).Poll())
}

// PendingWait consumes p and blocks until the response is available.
func PendingWait(p Handle, out *Handle, errOut *Handle) {
	resp, err := pendings.Take(p).Wait()
	resp = try(errOut, resp, err)
	*out = responses.Insert(resp)
}

// Select consumes every handle in group and blocks until one resolves. The
// winner's response goes to out, the remaining members to others as fresh
// handles in their original order.
func Select(group []Handle, out *Handle, others *[]Handle, errOut *Handle) {
	reqs := make([]*hostcall.PendingRequest, len(group))
	for i, h := range group {
		reqs[i] = pendings.Take(h)
	}
	resp, rest, err := hostcall.Select(reqs)
	setErr(errOut, err)
	*out = responses.Insert(resp)
	hs := make([]Handle, len(rest))
	for i, p := range rest {
		hs[i] = pendings.Insert(p)
	}
	*others = hs
}

// PollResultIsPending reports whether the exchange is still unresolved.
func PollResultIsPending(h Handle) bool {
	return pollResults.Borrow(h).IsPending()
}

// PollResultIsResponse reports whether h holds a response.
func PollResultIsResponse(h Handle) bool {
	return pollResults.Borrow(h).IsResponse()
}

// PollResultIsError reports whether h holds an error.
func PollResultIsError(h Handle) bool {
	return pollResults.Borrow(h).IsError()
}

// The PollResultInto functions consume h. Asking for a variant h does not
// hold panics.

// PollResultIntoPending returns a fresh Pending handle.
func PollResultIntoPending(h Handle) Handle {
	return pendings.Insert(pollResults.Take(h).IntoPending())
}

// PollResultIntoResponse returns the Response handle.
func PollResultIntoResponse(h Handle) Handle {
	return responses.Insert(pollResults.Take(h).IntoResponse())
}

// PollResultIntoError returns the Error handle.
func PollResultIntoError(h Handle) Handle {
	return errs.Insert(pollResults.Take(h).IntoError())
}
