// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

// Try writes the outcome of a fallible call into slot and returns the
// success value. On failure slot receives a fresh *Error and the zero value
// of T is returned. On success slot is set to nil. The previous contents of
// slot are never read.
func Try[T any](slot **Error, v T, err error) T {
	if slot == nil {
		panic("hostcall: nil error slot")
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
		panic("hostcall: nil error slot")
	}
	*slot = AsError(err)
}
