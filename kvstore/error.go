// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kvstore

import (
	"errors"
	"fmt"
	"strconv"
)

// Code classifies a key-value store [Error]. The set of codes is closed.
type Code uint8

const (
	CodeInvalidKey Code = iota
	CodeInvalidStoreHandle
	CodeInvalidStoreOptions
	CodeItemBadRequest
	CodeItemNotFound
	CodeItemPreconditionFailed
	CodeItemPayloadTooLarge
	CodeStoreNotFound
	CodeTooManyRequests
	CodeUnexpected

	codeCount
)

var codeText = [codeCount]string{
	CodeInvalidKey:             "invalid key",
	CodeInvalidStoreHandle:     "invalid store handle",
	CodeInvalidStoreOptions:    "invalid store options",
	CodeItemBadRequest:         "bad request",
	CodeItemNotFound:           "item not found",
	CodeItemPreconditionFailed: "precondition failed",
	CodeItemPayloadTooLarge:    "payload too large",
	CodeStoreNotFound:          "store not found",
	CodeTooManyRequests:        "too many requests",
	CodeUnexpected:             "unexpected error",
}

// String returns the message of c.
func (c Code) String() string {
	if c >= codeCount {
		return "unknown kv error code " + strconv.Itoa(int(c))
	}
	return codeText[c]
}

// Error lets a bare Code be used as an error.
func (c Code) Error() string { return c.String() }

// Error is the error value of every store operation.
type Error struct {
	code   Code
	detail string
	cause  error
}

// NewError returns an error with the given code and detail.
func NewError(code Code, detail string) *Error {
	return &Error{code: code, detail: detail}
}

func errorf(code Code, format string, args ...any) *Error {
	return &Error{code: code, detail: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error) *Error {
	return &Error{code: code, cause: cause}
}

// Code returns the classification of e.
func (e *Error) Code() Code { return e.code }

// Error renders the code, detail and cause.
func (e *Error) Error() string {
	msg := "kvstore: " + e.code.String()
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

// Is matches a bare Code with the same value.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.code
}

// AsError converts err into a fresh *Error. Foreign errors become
// CodeUnexpected.
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
	return wrapError(CodeUnexpected, err)
}

// Try writes the outcome of a store call into slot and returns the success
// value, or the zero value of T on failure.
func Try[T any](slot **Error, v T, err error) T {
	if slot == nil {
		panic("kvstore: nil error slot")
	}
	if err != nil {
		*slot = AsError(err)
		var zero T
		return zero
	}
	*slot = nil
	return v
}

// SetError is Try for calls without a success value.
func SetError(slot **Error, err error) {
	if slot == nil {
		panic("kvstore: nil error slot")
	}
	*slot = AsError(err)
}
