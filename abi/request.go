// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import "code.hybscloud.com/hostcall"

var (
	requests = hostcall.NewTable[hostcall.Request]("Request")
	streams  = hostcall.NewTable[hostcall.StreamingBody]("StreamingBody")
)

// RequestNew creates a request. method is a hostcall.Method value.
func RequestNew(method uint32, url []byte, out *Handle, errOut *Handle) {
	r, err := func() (*hostcall.Request, error) {
		m := hostcall.Method(method)
		if method > 0xff || !m.Valid() {
			return nil, hostcall.Errorf(hostcall.CodeRuntime, "unknown method %d", method)
		}
		u, err := text(url)
		if err != nil {
			return nil, err
		}
		return hostcall.NewRequest(m, u), nil
	}()
	r = try(errOut, r, err)
	*out = requests.Insert(r)
}

// RequestSetHeader replaces every value of name.
func RequestSetHeader(r Handle, name, value []byte, errOut *Handle) {
	req := requests.Borrow(r)
	setErr(errOut, func() error {
		n, err := text(name)
		if err != nil {
			return err
		}
		return req.SetHeader(n, value)
	}())
}

// RequestAppendHeader adds a value after the existing values of name.
func RequestAppendHeader(r Handle, name, value []byte, errOut *Handle) {
	req := requests.Borrow(r)
	setErr(errOut, func() error {
		n, err := text(name)
		if err != nil {
			return err
		}
		return req.AppendHeader(n, value)
	}())
}

// RequestSetBody replaces the request body with a copy of body.
func RequestSetBody(r Handle, body []byte) {
	requests.Borrow(r).SetBodyBytes(body)
}

// RequestSend consumes r, sends it through b and waits for the response.
func RequestSend(r, b Handle, out *Handle, errOut *Handle) {
	req := requests.Take(r)
	resp, err := req.Send(backends.Borrow(b))
	resp = try(errOut, resp, err)
	*out = responses.Insert(resp)
}

// RequestSendAsync consumes r and starts sending it through b.
func RequestSendAsync(r, b Handle, out *Handle, errOut *Handle) {
	req := requests.Take(r)
	p, err := req.SendAsync(backends.Borrow(b))
	p = try(errOut, p, err)
	*out = pendings.Insert(p)
}

// RequestSendAsyncStreaming consumes r and starts sending it through b with
// a body written through bodyOut.
func RequestSendAsyncStreaming(r, b Handle, bodyOut, pendingOut *Handle, errOut *Handle) {
	req := requests.Take(r)
	sb, p, err := req.SendAsyncStreaming(backends.Borrow(b))
	setErr(errOut, err)
	*bodyOut = streams.Insert(sb)
	*pendingOut = pendings.Insert(p)
}

// StreamingBodyWrite writes p and returns the number of bytes written. On
// failure it returns zero, even if part of p reached the peer.
func StreamingBodyWrite(s Handle, p []byte, errOut *Handle) uint32 {
	n, err := streams.Borrow(s).Write(p)
	return try(errOut, uint32(n), err)
}

// StreamingBodyFinish ends the body. The handle stays live until released.
func StreamingBodyFinish(s Handle, errOut *Handle) {
	setErr(errOut, streams.Borrow(s).Finish())
}
