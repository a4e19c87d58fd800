// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package abi is the flat foreign-call surface of a hostcall runtime.
//
// Every resource crosses the boundary as a [Handle]. Inputs are handles,
// integers and byte slices; results are written to out-parameters. Every
// fallible entry point takes an errOut parameter that receives exactly one
// value per call: the null handle on success, or a fresh Error (KVError for
// key-value calls) handle on failure that the caller must release.
//
// Entry points that consume a handle retire it whether or not they succeed.
// Using a retired, unknown or null handle panics.
//
// Like the caller it serves, the package assumes a single execution
// context: entry points must not be called concurrently.
package abi

import (
	"math"
	"time"
	"unicode/utf8"

	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/hostconfig"
	"code.hybscloud.com/hostcall/kvstore"
)

// Handle is an opaque resource reference. Zero is the null handle.
type Handle = hostcall.Handle

var rt *hostconfig.Runtime

// Init binds the entry points to r.
func Init(r *hostconfig.Runtime) {
	rt = r
}

func runtime() *hostconfig.Runtime {
	if rt == nil {
		panic("hostcall: abi used before Init")
	}
	return rt
}

func try[T any](errOut *Handle, v T, err error) T {
	var e *hostcall.Error
	v = hostcall.Try(&e, v, err)
	*errOut = errs.Insert(e)
	return v
}

func setErr(errOut *Handle, err error) {
	var e *hostcall.Error
	hostcall.SetError(&e, err)
	*errOut = errs.Insert(e)
}

func kvTry[T any](errOut *Handle, v T, err error) T {
	var e *kvstore.Error
	v = kvstore.Try(&e, v, err)
	*errOut = kvErrs.Insert(e)
	return v
}

func kvSetErr(errOut *Handle, err error) {
	var e *kvstore.Error
	kvstore.SetError(&e, err)
	*errOut = kvErrs.Insert(e)
}

func text(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", hostcall.NewError(hostcall.CodeUTF8, "")
	}
	return string(b), nil
}

func millis(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// toMillis saturates at math.MaxUint32.
func toMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	switch {
	case ms < 0:
		return 0
	case ms > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(ms)
}
