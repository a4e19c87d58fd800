// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Outgoing is a request as handed to a [Transport]: the URL already points
// at the backend target.
type Outgoing struct {
	Method string
	URL    *url.URL
	// Host is the Host header to send.
	Host   string
	Header http.Header
	Body   io.Reader
}

// Transport performs one exchange with a backend. It runs on the dispatcher,
// never on the caller's goroutine.
type Transport interface {
	RoundTrip(ctx context.Context, backend BackendConfig, out *Outgoing) (*Response, error)
}

var errBetweenBytesTimeout = errors.New("between-bytes timeout")

// HTTPTransport is the default [Transport]. It keeps one net/http client
// per distinct backend policy.
type HTTPTransport struct {
	mu      sync.Mutex
	clients map[BackendConfig]*http.Client
}

// NewHTTPTransport returns a transport with no cached clients.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{clients: make(map[BackendConfig]*http.Client)}
}

func (t *HTTPTransport) client(cfg BackendConfig) *http.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[cfg]; ok {
		return c
	}
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	if cfg.TCPKeepalive {
		dialer.KeepAliveConfig = net.KeepAliveConfig{
			Enable:   true,
			Idle:     cfg.TCPKeepaliveTime,
			Interval: cfg.TCPKeepaliveInterval,
			Count:    cfg.TCPKeepaliveProbes,
		}
	} else {
		dialer.KeepAlive = -1
	}
	tr := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: cfg.FirstByteTimeout,
		IdleConnTimeout:       cfg.HTTPKeepaliveTime,
		DisableKeepAlives:     !cfg.Pooling,
	}
	if cfg.UseSSL {
		tc := &tls.Config{ServerName: cfg.SNIHostname}
		if cfg.CACertificate != "" {
			pool, err := x509.SystemCertPool()
			if err != nil {
				pool = x509.NewCertPool()
			}
			pool.AppendCertsFromPEM([]byte(cfg.CACertificate))
			tc.RootCAs = pool
		}
		tr.TLSClientConfig = tc
	}
	c := &http.Client{
		Transport: tr,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	t.clients[cfg] = c
	return c
}

// RoundTrip sends out and reads the whole response body. Timeouts and
// transport failures fail with CodeSend.
func (t *HTTPTransport) RoundTrip(ctx context.Context, cfg BackendConfig, out *Outgoing) (*Response, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL.String(), out.Body)
	if err != nil {
		return nil, wrapError(CodeSend, err)
	}
	req.Header = out.Header
	req.Host = out.Host
	resp, err := t.client(cfg).Do(req)
	if err != nil {
		return nil, wrapError(CodeSend, err)
	}
	defer resp.Body.Close()

	var src io.Reader = resp.Body
	if cfg.BetweenBytesTimeout > 0 {
		ir := &idleReader{r: resp.Body, d: cfg.BetweenBytesTimeout}
		ir.timer = time.AfterFunc(ir.d, func() { cancel(errBetweenBytesTimeout) })
		defer ir.timer.Stop()
		src = ir
	}
	body := &Body{}
	if _, err := body.buf.ReadFrom(src); err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, errBetweenBytesTimeout) {
			err = cause
		}
		return nil, wrapError(CodeSend, err)
	}

	return responseFromHTTP(resp.StatusCode, resp.Header, resp.Trailer, body), nil
}

// ResponseFromHTTP builds a backend response for a [Transport]. Header and
// trailer values that fail validation are left out and reported by
// [Response.DroppedHeaders].
func ResponseFromHTTP(status int, header, trailer http.Header, body []byte) *Response {
	return responseFromHTTP(status, header, trailer, BodyFromBytes(body))
}

func responseFromHTTP(status int, header, trailer http.Header, body *Body) *Response {
	h, dropped := headerFromHTTP(header)
	tr, droppedTrailer := headerFromHTTP(trailer)
	body.trailer = tr
	return &Response{
		status:  status,
		header:  h,
		body:    body,
		dropped: append(dropped, droppedTrailer...),
	}
}

// idleReader rearms its timer after every read that makes progress.
type idleReader struct {
	r     io.Reader
	d     time.Duration
	timer *time.Timer
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.timer.Reset(r.d)
	}
	return n, err
}
