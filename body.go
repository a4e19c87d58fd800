// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"bytes"
	"io"
)

// Body is an owned, in-memory message body with optional trailers.
type Body struct {
	owner
	buf     bytes.Buffer
	trailer Header
}

// NewBody returns an empty body.
func NewBody() *Body { return &Body{} }

// BodyFromBytes returns a body holding a copy of b.
func BodyFromBytes(b []byte) *Body {
	body := &Body{}
	body.buf.Write(b)
	return body
}

// BodyFromString returns a body holding s.
func BodyFromString(s string) *Body {
	body := &Body{}
	body.buf.WriteString(s)
	return body
}

// Write appends p to the body.
func (b *Body) Write(p []byte) (int, error) {
	b.borrow("Body")
	return b.buf.Write(p)
}

// WriteString appends s to the body.
func (b *Body) WriteString(s string) (int, error) {
	b.borrow("Body")
	return b.buf.WriteString(s)
}

// Read drains bytes from the front of the body.
func (b *Body) Read(p []byte) (int, error) {
	b.borrow("Body")
	return b.buf.Read(p)
}

// Append moves the contents of other to the end of b and consumes other.
func (b *Body) Append(other *Body) {
	b.borrow("Body")
	other.take("Body")
	b.buf.Write(other.buf.Bytes())
	for _, f := range other.trailer.fields {
		for _, v := range f.values {
			_ = b.trailer.AppendValue(f.name, v)
		}
	}
	other.buf.Reset()
}

// Len returns the number of unread bytes.
func (b *Body) Len() int {
	b.borrow("Body")
	return b.buf.Len()
}

// Bytes returns the unread bytes. The slice aliases the body until the next
// mutation.
func (b *Body) Bytes() []byte {
	b.borrow("Body")
	return b.buf.Bytes()
}

// String returns the unread bytes as a string.
func (b *Body) String() string {
	b.borrow("Body")
	return b.buf.String()
}

// IntoBytes consumes the body and returns its contents.
func (b *Body) IntoBytes() []byte {
	b.take("Body")
	return b.buf.Bytes()
}

// Trailer returns the trailer section for in-place edits.
func (b *Body) Trailer() *Header {
	b.borrow("Body")
	return &b.trailer
}

// AppendTrailer adds a trailer field.
func (b *Body) AppendTrailer(name string, value []byte) error {
	b.borrow("Body")
	return b.trailer.Append(name, value)
}

func (b *Body) reader() io.Reader {
	return bytes.NewReader(b.buf.Bytes())
}

// Release drops the contents. Releasing a consumed body is a no-op.
func (b *Body) Release() {
	if b.consumed {
		return
	}
	b.consumed = true
	b.buf = bytes.Buffer{}
}
