// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import (
	"slices"

	"code.hybscloud.com/hostcall"
)

var (
	responses    = hostcall.NewTable[hostcall.Response]("Response")
	valueCursors = hostcall.NewTable[hostcall.HeaderValuesCursor]("HeaderValuesCursor")
	nameCursors  = hostcall.NewTable[hostcall.HeaderNamesCursor]("HeaderNamesCursor")
	pairCursors  = hostcall.NewTable[hostcall.HeadersCursor]("HeadersCursor")
)

// ResponseNew creates an empty 200 response.
func ResponseNew() Handle {
	return responses.Insert(hostcall.NewResponse())
}

// ResponseSetStatus sets the status code. Codes outside 100..999 fail with
// hostcall.CodeInvalidStatusCode.
func ResponseSetStatus(h Handle, code uint16, errOut *Handle) {
	setErr(errOut, responses.Borrow(h).SetStatus(int(code)))
}

// ResponseAppendHeader adds a header value.
func ResponseAppendHeader(h Handle, name, value []byte, errOut *Handle) {
	resp := responses.Borrow(h)
	setErr(errOut, func() error {
		n, err := text(name)
		if err != nil {
			return err
		}
		return resp.Header().Append(n, value)
	}())
}

// ResponseSetBody replaces the response body with a copy of body.
func ResponseSetBody(h Handle, body []byte) {
	responses.Borrow(h).SetBody(hostcall.BodyFromBytes(body))
}

// ResponseStatus returns the status code.
func ResponseStatus(h Handle) uint16 {
	return uint16(responses.Borrow(h).Status())
}

// ResponseBackendName writes the producing backend's name to out and
// reports whether there was one.
func ResponseBackendName(h Handle, out *[]byte) bool {
	name, ok := responses.Borrow(h).BackendName()
	if ok {
		*out = []byte(name)
	}
	return ok
}

// ResponseBody returns a copy of the unread body bytes.
func ResponseBody(h Handle) []byte {
	return slices.Clone(responses.Borrow(h).Body().Bytes())
}

// ResponseGetHeaderAll opens a cursor over the values of name.
func ResponseGetHeaderAll(h Handle, name []byte, out *Handle, errOut *Handle) {
	resp := responses.Borrow(h)
	c, err := func() (*hostcall.HeaderValuesCursor, error) {
		n, err := text(name)
		if err != nil {
			return nil, err
		}
		return resp.GetHeaderAll(n)
	}()
	c = try(errOut, c, err)
	*out = valueCursors.Insert(c)
}

// ResponseHeaders opens a cursor over every (name, value) pair.
func ResponseHeaders(h Handle) Handle {
	return pairCursors.Insert(responses.Borrow(h).Headers())
}

// ResponseHeaderNames opens a cursor over the distinct header names.
func ResponseHeaderNames(h Handle) Handle {
	return nameCursors.Insert(responses.Borrow(h).HeaderNames())
}

// HeaderValuesNext advances c. It returns false once the values are
// exhausted and keeps returning false afterwards.
func HeaderValuesNext(c Handle, value *[]byte, sensitive *bool) bool {
	v, ok := valueCursors.Borrow(c).Next()
	if ok {
		*value = slices.Clone(v.Bytes())
		*sensitive = v.IsSensitive()
	}
	return ok
}

// HeaderNamesNext advances c. Exhaustion is sticky.
func HeaderNamesNext(c Handle, name *[]byte) bool {
	n, ok := nameCursors.Borrow(c).Next()
	if ok {
		*name = []byte(n)
	}
	return ok
}

// HeadersNext advances c, writing the next pair. Exhaustion is sticky.
func HeadersNext(c Handle, name *[]byte, value *[]byte, sensitive *bool) bool {
	n, v, ok := pairCursors.Borrow(c).Next()
	if ok {
		*name = []byte(n)
		*value = slices.Clone(v.Bytes())
		*sensitive = v.IsSensitive()
	}
	return ok
}
