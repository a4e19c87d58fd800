// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"io"
	"net/url"
	"strings"
)

// Method is an HTTP request method.
type Method uint8

const (
	MethodGet Method = iota
	MethodHead
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace

	methodCount
)

var methodText = [methodCount]string{
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodPatch:   "PATCH",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
}

// String returns the method token.
func (m Method) String() string {
	if m >= methodCount {
		return "UNKNOWN"
	}
	return methodText[m]
}

// Valid reports whether m is one of the defined methods.
func (m Method) Valid() bool { return m < methodCount }

// ParseMethod maps a method token to a Method. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	for m, text := range methodText {
		if strings.EqualFold(s, text) {
			return Method(m), nil
		}
	}
	return 0, errorf(CodeRuntime, "unsupported method %q", s)
}

// Request is an owned outgoing HTTP request. Sending consumes it.
type Request struct {
	owner
	method Method
	url    string
	header Header
	body   *Body
	// fromClient marks the request a client sent to the host.
	fromClient bool
}

// NewRequest returns a request for rawURL. The URL is parsed when the
// request is sent.
func NewRequest(method Method, rawURL string) *Request {
	return &Request{method: method, url: rawURL}
}

// Get returns a GET request for rawURL.
func Get(rawURL string) *Request { return NewRequest(MethodGet, rawURL) }

// Post returns a POST request for rawURL.
func Post(rawURL string) *Request { return NewRequest(MethodPost, rawURL) }

// Put returns a PUT request for rawURL.
func Put(rawURL string) *Request { return NewRequest(MethodPut, rawURL) }

// Method returns the request method.
func (r *Request) Method() Method {
	r.borrow("Request")
	return r.method
}

// SetMethod replaces the request method.
func (r *Request) SetMethod(m Method) {
	r.borrow("Request")
	r.method = m
}

// URL returns the request URL as given.
func (r *Request) URL() string {
	r.borrow("Request")
	return r.url
}

// SetURL replaces the request URL. It is parsed when the request is sent.
func (r *Request) SetURL(rawURL string) {
	r.borrow("Request")
	r.url = rawURL
}

// Path returns the path component of the URL.
func (r *Request) Path() (string, error) {
	u, err := r.parseURL()
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// Query returns the raw query component of the URL.
func (r *Request) Query() (string, error) {
	u, err := r.parseURL()
	if err != nil {
		return "", err
	}
	return u.RawQuery, nil
}

func (r *Request) parseURL() (*url.URL, error) {
	r.borrow("Request")
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, wrapError(CodeAddrParse, err)
	}
	return u, nil
}

// IsFromClient reports whether r is the request a client sent to the host,
// as returned by [Downstream.Request]. Copies are not.
func (r *Request) IsFromClient() bool {
	r.borrow("Request")
	return r.fromClient
}

// Header returns the request header for in-place edits.
func (r *Request) Header() *Header {
	r.borrow("Request")
	return &r.header
}

// SetHeader replaces every value of name.
func (r *Request) SetHeader(name string, value []byte) error {
	r.borrow("Request")
	return r.header.Set(name, value)
}

// AppendHeader adds a value after the existing values of name.
func (r *Request) AppendHeader(name string, value []byte) error {
	r.borrow("Request")
	return r.header.Append(name, value)
}

// Body returns the request body, or nil if none was set.
func (r *Request) Body() *Body {
	r.borrow("Request")
	return r.body
}

// SetBody consumes body and attaches it, releasing any previous body.
func (r *Request) SetBody(body *Body) {
	r.borrow("Request")
	body.take("Body")
	nb := &Body{trailer: body.trailer}
	nb.buf.Write(body.buf.Bytes())
	if r.body != nil {
		r.body.Release()
	}
	r.body = nb
}

// SetBodyBytes replaces the body with a copy of b.
func (r *Request) SetBodyBytes(b []byte) {
	r.SetBody(BodyFromBytes(b))
}

// TakeBody detaches and returns the body, or nil.
func (r *Request) TakeBody() *Body {
	r.borrow("Request")
	b := r.body
	r.body = nil
	return b
}

// CloneWithoutBody returns a new request with the same method, URL and
// header and no body.
func (r *Request) CloneWithoutBody() *Request {
	r.borrow("Request")
	return r.cloneHead()
}

func (r *Request) cloneHead() *Request {
	return &Request{method: r.method, url: r.url, header: r.header.Clone()}
}

// Release drops the request. Releasing a consumed request is a no-op.
func (r *Request) Release() {
	if r.consumed {
		return
	}
	r.consumed = true
	if r.body != nil {
		r.body.Release()
	}
}

// outgoing retargets the request at cfg. The path and query are kept; the
// Host header comes from the override host, else from the request URL.
func (r *Request) outgoing(cfg BackendConfig, body io.Reader) (*Outgoing, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, wrapError(CodeAddrParse, err)
	}
	host := u.Host
	if cfg.OverrideHost != "" {
		host = cfg.OverrideHost
	}
	if host == "" {
		host = cfg.Target
	}
	target := *u
	target.Scheme = "http"
	if cfg.UseSSL {
		target.Scheme = "https"
	}
	target.Host = cfg.Target
	target.User = nil
	if body == nil && r.body != nil {
		body = r.body.reader()
	}
	return &Outgoing{
		Method: r.method.String(),
		URL:    &target,
		Host:   host,
		Header: r.header.toHTTP(),
		Body:   body,
	}, nil
}

// SendAsync consumes the request and starts sending it to b in the
// background. The request is consumed even when SendAsync fails.
func (r *Request) SendAsync(b *Backend) (*PendingRequest, error) {
	r.take("Request")
	return r.start(b, nil, nil)
}

// Send is SendAsync followed by Wait.
func (r *Request) Send(b *Backend) (*Response, error) {
	p, err := r.SendAsync(b)
	if err != nil {
		return nil, err
	}
	return p.Wait()
}

// SendAsyncStreaming consumes the request and starts sending it with a body
// that is written incrementally through the returned [StreamingBody]. Bytes
// already in the request body are sent first.
func (r *Request) SendAsyncStreaming(b *Backend) (*StreamingBody, *PendingRequest, error) {
	r.take("Request")
	sb, rd := newStreamingBody()
	var body io.Reader = rd
	if r.body != nil {
		body = io.MultiReader(r.body.reader(), rd)
	}
	p, err := r.start(b, body, func() { rd.CloseWithError(errExchangeDone) })
	if err != nil {
		sb.Release()
		return nil, nil, err
	}
	return sb, p, nil
}

// start hands the request to b's host. done, if set, runs once the exchange
// resolves.
func (r *Request) start(b *Backend, body io.Reader, done func()) (*PendingRequest, error) {
	if b == nil {
		return nil, newError(CodeBackend, "nil backend")
	}
	out, err := r.outgoing(b.config, body)
	if err != nil {
		return nil, err
	}
	op := newInflight(b.name, r)
	b.host.start(op, b.config, out, done)
	return &PendingRequest{op: op}, nil
}
