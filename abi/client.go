// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import (
	"net/http"
	"sync"

	"code.hybscloud.com/hostcall"
)

var (
	serveMu sync.Mutex
	client  *hostcall.Downstream
)

// Serve returns an http.Handler that runs fn once per client request. Client
// requests are served one at a time; while fn runs, the client entry points
// act on the request being served.
func Serve(fn func()) http.Handler {
	return runtime().Host.Handler(func(d *hostcall.Downstream) {
		serveMu.Lock()
		defer serveMu.Unlock()
		client = d
		defer func() { client = nil }()
		fn()
	})
}

func downstream() *hostcall.Downstream {
	if client == nil {
		panic("hostcall: no client request is being served")
	}
	return client
}

// RequestFromClient returns a handle to the client request. It may be called
// once per client request.
func RequestFromClient() Handle {
	return requests.Insert(downstream().Request())
}

// RequestIsFromClient reports whether r is the client request.
func RequestIsFromClient(r Handle) bool {
	return requests.Borrow(r).IsFromClient()
}

// ClientIPAddr writes the client address in text form to out and reports
// whether it is known.
func ClientIPAddr(out *[]byte) bool {
	addr, ok := downstream().ClientIP()
	if ok {
		*out = []byte(addr.String())
	}
	return ok
}

// ResponseSendToClient consumes resp and sends it to the client.
func ResponseSendToClient(resp Handle, errOut *Handle) {
	setErr(errOut, downstream().SendResponse(responses.Take(resp)))
}

// ResponseStreamToClient consumes resp, sends its head and body to the
// client and writes a StreamingBody handle for the rest of the body to out.
func ResponseStreamToClient(resp Handle, out *Handle, errOut *Handle) {
	sb, err := downstream().StreamResponse(responses.Take(resp))
	sb = try(errOut, sb, err)
	*out = streams.Insert(sb)
}
