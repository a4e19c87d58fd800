// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"net/http"
	"slices"
)

// Response is an owned HTTP response, either received from a backend or
// built by the caller.
type Response struct {
	owner
	status         int
	header         Header
	body           *Body
	backendName    string
	backendRequest *Request
	// dropped names upstream fields whose values failed validation.
	dropped []string
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{status: http.StatusOK, body: &Body{}}
}

// Status returns the status code.
func (r *Response) Status() int {
	r.borrow("Response")
	return r.status
}

// SetStatus sets the status code. Codes outside 100..999 fail with
// CodeInvalidStatusCode.
func (r *Response) SetStatus(code int) error {
	r.borrow("Response")
	if code < 100 || code > 999 {
		return errorf(CodeInvalidStatusCode, "%d", code)
	}
	r.status = code
	return nil
}

// Header returns the response header for in-place edits.
func (r *Response) Header() *Header {
	r.borrow("Response")
	return &r.header
}

// GetHeaderAll returns a cursor over the values of name.
func (r *Response) GetHeaderAll(name string) (*HeaderValuesCursor, error) {
	r.borrow("Response")
	return r.header.Values(name)
}

// HeaderNames returns a cursor over the distinct header names.
func (r *Response) HeaderNames() *HeaderNamesCursor {
	r.borrow("Response")
	return r.header.NamesCursor()
}

// Headers returns a cursor over every (name, value) pair.
func (r *Response) Headers() *HeadersCursor {
	r.borrow("Response")
	return r.header.PairsCursor()
}

// Body returns the response body for in-place use.
func (r *Response) Body() *Body {
	r.borrow("Response")
	if r.body == nil {
		r.body = &Body{}
	}
	return r.body
}

// TakeBody detaches the body, leaving an empty one in its place.
func (r *Response) TakeBody() *Body {
	b := r.Body()
	r.body = &Body{}
	return b
}

// SetBody consumes body and attaches it.
func (r *Response) SetBody(body *Body) {
	r.borrow("Response")
	body.take("Body")
	nb := &Body{trailer: body.trailer}
	nb.buf.Write(body.buf.Bytes())
	r.body = nb
}

// IntoBody consumes the response and returns its body.
func (r *Response) IntoBody() *Body {
	b := r.Body()
	r.take("Response")
	return b
}

// BackendName returns the name of the backend that produced the response.
// It reports false for responses built by the caller.
func (r *Response) BackendName() (string, bool) {
	r.borrow("Response")
	return r.backendName, r.backendName != ""
}

// BackendRequest returns a copy of the request that produced the response,
// without its body, or nil for responses built by the caller.
func (r *Response) BackendRequest() *Request {
	r.borrow("Response")
	if r.backendRequest == nil {
		return nil
	}
	return r.backendRequest.cloneHead()
}

// DroppedHeaders returns the names of upstream header and trailer fields
// whose values were invalid and left out, one entry per dropped value.
func (r *Response) DroppedHeaders() []string {
	r.borrow("Response")
	return slices.Clone(r.dropped)
}

// Release drops the response. Releasing a consumed response is a no-op.
func (r *Response) Release() {
	if r.consumed {
		return
	}
	r.consumed = true
	if r.body != nil {
		r.body.Release()
	}
}

// CanonicalReason returns the reason phrase for an HTTP status code, or ""
// if the code is unknown.
func CanonicalReason(code int) string {
	return http.StatusText(code)
}
