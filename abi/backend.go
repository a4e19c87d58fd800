// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import "code.hybscloud.com/hostcall"

var (
	backends = hostcall.NewTable[hostcall.Backend]("Backend")
	builders = hostcall.NewTable[hostcall.BackendBuilder]("BackendBuilder")
)

// BackendFromName looks up a registered backend.
func BackendFromName(name []byte, out *Handle, errOut *Handle) {
	b, err := func() (*hostcall.Backend, error) {
		s, err := text(name)
		if err != nil {
			return nil, err
		}
		return runtime().Host.Backend(s)
	}()
	b = try(errOut, b, err)
	*out = backends.Insert(b)
}

// BackendBuilderNew starts a dynamic backend.
func BackendBuilderNew(name, target []byte, out *Handle, errOut *Handle) {
	bb, err := func() (*hostcall.BackendBuilder, error) {
		n, err := text(name)
		if err != nil {
			return nil, err
		}
		t, err := text(target)
		if err != nil {
			return nil, err
		}
		return runtime().Host.NewBackendBuilder(n, t), nil
	}()
	bb = try(errOut, bb, err)
	*out = builders.Insert(bb)
}

// The builder setters consume b and return a new builder handle.

// BackendBuilderConnectTimeout sets the connection setup bound in milliseconds.
func BackendBuilderConnectTimeout(b Handle, ms uint32) Handle {
	return builders.Insert(builders.Take(b).ConnectTimeout(millis(ms)))
}

// BackendBuilderFirstByteTimeout sets the response header bound in milliseconds.
func BackendBuilderFirstByteTimeout(b Handle, ms uint32) Handle {
	return builders.Insert(builders.Take(b).FirstByteTimeout(millis(ms)))
}

// BackendBuilderBetweenBytesTimeout sets the bound between body reads in
// milliseconds.
func BackendBuilderBetweenBytesTimeout(b Handle, ms uint32) Handle {
	return builders.Insert(builders.Take(b).BetweenBytesTimeout(millis(ms)))
}

// BackendBuilderEnableSSL reaches the backend over TLS.
func BackendBuilderEnableSSL(b Handle) Handle {
	return builders.Insert(builders.Take(b).EnableSSL())
}

// BackendBuilderFinish consumes b and registers the backend.
func BackendBuilderFinish(b Handle, out *Handle, errOut *Handle) {
	be, err := builders.Take(b).Finish()
	be = try(errOut, be, err)
	*out = backends.Insert(be)
}

// BackendName returns the registered name of b.
func BackendName(b Handle) []byte {
	return []byte(backends.Borrow(b).Name())
}

// BackendConnectTimeout returns the connection setup bound in milliseconds.
func BackendConnectTimeout(b Handle) uint32 {
	return toMillis(backends.Borrow(b).ConnectTimeout())
}

// BackendFirstByteTimeout returns the response header bound in milliseconds.
func BackendFirstByteTimeout(b Handle) uint32 {
	return toMillis(backends.Borrow(b).FirstByteTimeout())
}

// BackendBetweenBytesTimeout returns the bound between body reads in
// milliseconds.
func BackendBetweenBytesTimeout(b Handle) uint32 {
	return toMillis(backends.Borrow(b).BetweenBytesTimeout())
}
