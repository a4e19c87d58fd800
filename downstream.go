// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"io"
	"net"
	"net/http"
	"net/netip"
)

// Downstream is one client exchange: the request a client sent to the host
// and the single response owed to it. It is handed to the function given
// to [Host.Handler] and is valid only while that function runs.
type Downstream struct {
	host   *Host
	w      http.ResponseWriter
	remote string

	req       *Request
	taken     bool
	responded bool
	stream    *StreamingBody
}

// Handler returns an http.Handler that serves every client request by
// calling fn with its [Downstream]. fn runs on the goroutine of the request,
// which acts as the caller context of that exchange.
//
// If fn returns without responding, the client receives 500. If fn leaves a
// streamed response unfinished, the connection is aborted.
func (h *Host) Handler(fn func(*Downstream)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := h.clientRequest(r)
		if err != nil {
			h.logger.Debug("client request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
			status := http.StatusBadRequest
			if code, _ := CodeOf(err); code == CodeRuntime {
				status = http.StatusNotImplemented
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
		d := &Downstream{host: h, w: w, remote: r.RemoteAddr, req: req}
		fn(d)
		d.close()
	})
}

func (h *Host) clientRequest(r *http.Request) (*Request, error) {
	m, err := ParseMethod(r.Method)
	if err != nil {
		return nil, err
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	req := NewRequest(m, scheme+"://"+r.Host+r.URL.RequestURI())
	req.fromClient = true
	var dropped []string
	req.header, dropped = headerFromHTTP(r.Header)
	if len(dropped) > 0 {
		h.logger.Debug("invalid client header values dropped", "headers", dropped)
	}
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, wrapError(CodeIO, err)
		}
		if len(b) > 0 || len(r.Trailer) > 0 {
			req.body = BodyFromBytes(b)
			req.body.trailer, _ = headerFromHTTP(r.Trailer)
		}
	}
	return req, nil
}

// Request hands the client request to the caller. It may be taken once.
func (d *Downstream) Request() *Request {
	if d.taken {
		panic("hostcall: client request already taken")
	}
	d.taken = true
	req := d.req
	d.req = nil
	return req
}

// ClientIP returns the address of the client, if known.
func (d *Downstream) ClientIP() (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(d.remote)
	if err != nil {
		host = d.remote
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// Responded reports whether a response has been sent or started.
func (d *Downstream) Responded() bool { return d.responded }

func (d *Downstream) begin(resp *Response) error {
	resp.borrow("Response")
	if d.responded {
		resp.Release()
		return newError(CodeRuntime, "response already sent to client")
	}
	resp.take("Response")
	d.responded = true
	hdr := d.w.Header()
	for k, v := range resp.header.toHTTP() {
		hdr[k] = v
	}
	if resp.body != nil {
		for _, name := range resp.body.trailer.Names() {
			hdr.Add("Trailer", http.CanonicalHeaderKey(name))
		}
	}
	d.w.WriteHeader(resp.status)
	return nil
}

func releaseBody(resp *Response) {
	if resp.body != nil {
		resp.body.Release()
	}
}

func (d *Downstream) writeBody(resp *Response) error {
	if resp.body == nil {
		return nil
	}
	if _, err := d.w.Write(resp.body.buf.Bytes()); err != nil {
		return wrapError(CodeIO, err)
	}
	return nil
}

func (d *Downstream) writeTrailer(resp *Response) {
	if resp.body == nil {
		return
	}
	for k, v := range resp.body.trailer.toHTTP() {
		d.w.Header()[k] = v
	}
}

// SendResponse consumes resp and sends it to the client. A second response
// fails with CodeRuntime.
func (d *Downstream) SendResponse(resp *Response) error {
	if err := d.begin(resp); err != nil {
		return err
	}
	defer releaseBody(resp)
	if err := d.writeBody(resp); err != nil {
		return err
	}
	d.writeTrailer(resp)
	return nil
}

// StreamResponse consumes resp, sends its status, header and body to the
// client and returns a [StreamingBody] for the rest of the body. Trailers
// are sent when the body is finished.
func (d *Downstream) StreamResponse(resp *Response) (*StreamingBody, error) {
	if err := d.begin(resp); err != nil {
		return nil, err
	}
	defer releaseBody(resp)
	if err := d.writeBody(resp); err != nil {
		return nil, err
	}
	sink := &clientSink{w: d.w, rc: http.NewResponseController(d.w)}
	if resp.body != nil {
		sink.trailer = resp.body.trailer.Clone()
	}
	if err := sink.rc.Flush(); err != nil {
		return nil, wrapError(CodeIO, err)
	}
	d.stream = &StreamingBody{sink: sink}
	return d.stream, nil
}

func (d *Downstream) close() {
	if d.req != nil {
		d.req.Release()
		d.req = nil
	}
	switch {
	case d.stream != nil && !d.stream.finished:
		d.host.logger.Debug("streamed client response left unfinished")
		panic(http.ErrAbortHandler)
	case !d.responded:
		d.host.logger.Warn("no response sent to client")
		http.Error(d.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// clientSink streams a response body to the client, flushing every write.
type clientSink struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	trailer Header
}

func (s *clientSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, s.rc.Flush()
}

func (s *clientSink) finish() error {
	hdr := s.w.Header()
	for k, v := range s.trailer.toHTTP() {
		hdr[k] = v
	}
	return nil
}

func (s *clientSink) abort(error) {}
