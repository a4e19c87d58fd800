// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"errors"
	"fmt"
	"strconv"
)

// Code classifies an [Error]. The set of codes is closed.
type Code uint8

const (
	CodeUTF8 Code = iota
	CodeInvalidHeaderName
	CodeInvalidHeaderValue
	CodeInvalidStatusCode
	CodeIO
	CodeRuntime
	CodeSend
	CodeAddrParse
	CodeBackend
	CodeBackendCreation
	CodeStatus
	CodeConfigStoreOpen
	CodeConfigStoreLookup
	CodeSecretStoreOpen
	CodeSecretStoreLookup
	CodeLogging
	CodeTemplate

	codeCount
)

// codeText is indexed by Code. Its length is fixed by codeCount, so adding a
// code without a message fails to compile.
var codeText = [codeCount]string{
	CodeUTF8:               "invalid UTF-8",
	CodeInvalidHeaderName:  "invalid header name",
	CodeInvalidHeaderValue: "invalid header value",
	CodeInvalidStatusCode:  "invalid status code",
	CodeIO:                 "I/O error",
	CodeRuntime:            "runtime error",
	CodeSend:               "send error",
	CodeAddrParse:          "address parse error",
	CodeBackend:            "backend error",
	CodeBackendCreation:    "backend creation error",
	CodeStatus:             "host status",
	CodeConfigStoreOpen:    "config store open error",
	CodeConfigStoreLookup:  "config store lookup error",
	CodeSecretStoreOpen:    "secret store open error",
	CodeSecretStoreLookup:  "secret store lookup error",
	CodeLogging:            "logging error",
	CodeTemplate:           "template error",
}

// String returns the fixed message of c.
func (c Code) String() string {
	if c >= codeCount {
		return "unknown error code " + strconv.Itoa(int(c))
	}
	return codeText[c]
}

// Error lets a bare Code be used as an errors.Is target.
func (c Code) Error() string { return c.String() }

// Error is the value placed in an error slot. It pairs a [Code] with an
// optional detail and the native cause.
type Error struct {
	code   Code
	status Status
	detail string
	cause  error
}

// NewError returns an error with the given code and detail.
func NewError(code Code, detail string) *Error {
	return newError(code, detail)
}

// Errorf is NewError with a formatted detail.
func Errorf(code Code, format string, args ...any) *Error {
	return errorf(code, format, args...)
}

// WrapError returns an error with the given code and native cause.
func WrapError(code Code, cause error) *Error {
	return wrapError(code, cause)
}

func newError(code Code, detail string) *Error {
	return &Error{code: code, detail: detail}
}

func errorf(code Code, format string, args ...any) *Error {
	return &Error{code: code, detail: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error) *Error {
	return &Error{code: code, cause: cause}
}

func statusError(st Status) *Error {
	return &Error{code: CodeStatus, status: st}
}

// Code returns the classification of e.
func (e *Error) Code() Code { return e.code }

// Status returns the host status carried by a [CodeStatus] error and
// [StatusOK] for every other code.
func (e *Error) Status() Status {
	if e.code != CodeStatus {
		return StatusOK
	}
	return e.status
}

// Error renders the code, host status, detail and cause.
func (e *Error) Error() string {
	msg := e.code.String()
	if e.code == CodeStatus {
		msg += ": " + e.status.String()
	}
	if e.detail != "" {
		msg += ": " + e.detail
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the native cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the Code of e.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.code
}

// AsError converts err into a fresh *Error. A nil err yields nil. An *Error
// anywhere in the chain is copied; any other error becomes [CodeRuntime]
// with err as its cause. The result never aliases err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		return &cp
	}
	var c Code
	if errors.As(err, &c) {
		return &Error{code: c}
	}
	return wrapError(CodeRuntime, err)
}

// CodeOf returns the Code of the first *Error in err's chain.
// It reports false when err is nil or carries no *Error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.code, true
	}
	return 0, false
}
