// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import "code.hybscloud.com/iox"

// Select consumes every member of reqs and blocks until one resolves.
//
// Members are checked in submission order on every round, so when several
// are ready the one submitted first wins. The remaining members are
// returned as fresh handles in their original relative order and keep
// running; none is cancelled. When the winner failed, its error is
// returned together with the remaining members.
//
// Select on an empty group fails with CodeRuntime. A nil member or the same
// PendingRequest given twice panics.
func Select(reqs []*PendingRequest) (*Response, []*PendingRequest, error) {
	if len(reqs) == 0 {
		return nil, nil, newError(CodeRuntime, "select on empty group")
	}
	ops := make([]*inflight, len(reqs))
	for i, p := range reqs {
		if p == nil {
			panic("hostcall: nil PendingRequest in select group")
		}
		p.take("PendingRequest")
		ops[i] = p.op
	}
	var bo iox.Backoff
	for {
		for i, op := range ops {
			c, ok := op.poll()
			if !ok {
				continue
			}
			others := make([]*PendingRequest, 0, len(ops)-1)
			for j, o := range ops {
				if j != i {
					others = append(others, &PendingRequest{op: o})
				}
			}
			selectTotal.Inc()
			resp, err := unpack(c)
			return resp, others, err
		}
		bo.Wait()
	}
}
