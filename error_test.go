// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"code.hybscloud.com/hostcall"
)

func TestCodeMessagesAreDistinct(t *testing.T) {
	seen := make(map[string]hostcall.Code)
	for c := hostcall.CodeUTF8; c <= hostcall.CodeTemplate; c++ {
		msg := c.String()
		if msg == "" || strings.HasPrefix(msg, "unknown") {
			t.Fatalf("code %d has no message", c)
		}
		if prev, ok := seen[msg]; ok {
			t.Fatalf("codes %d and %d share message %q", prev, c, msg)
		}
		seen[msg] = c
	}
	if got := (hostcall.CodeTemplate + 1).String(); !strings.HasPrefix(got, "unknown") {
		t.Fatalf("out-of-range code rendered as %q", got)
	}
}

func TestStatusMessages(t *testing.T) {
	for s := hostcall.StatusOK; s <= hostcall.StatusAgain; s++ {
		if strings.HasPrefix(s.String(), "unknown") {
			t.Fatalf("status %d has no message", s)
		}
	}
	if hostcall.StatusOK.Err() != nil {
		t.Fatal("StatusOK.Err() != nil")
	}
	err := hostcall.StatusLimitExceeded.Err()
	var e *hostcall.Error
	if !errors.As(err, &e) || e.Code() != hostcall.CodeStatus || e.Status() != hostcall.StatusLimitExceeded {
		t.Fatalf("status error = %v", err)
	}
	if !hostcall.StatusAgain.Temporary() || hostcall.StatusBadF.Temporary() {
		t.Fatal("Temporary classification wrong")
	}
}

func TestErrorRendering(t *testing.T) {
	e := hostcall.Errorf(hostcall.CodeInvalidHeaderName, "%q", "bad name")
	if got, want := e.Error(), `invalid header name: "bad name"`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	w := hostcall.WrapError(hostcall.CodeIO, io.ErrUnexpectedEOF)
	if !errors.Is(w, io.ErrUnexpectedEOF) {
		t.Fatal("cause not reachable through Unwrap")
	}
	if !errors.Is(w, hostcall.CodeIO) || errors.Is(w, hostcall.CodeSend) {
		t.Fatal("Is(Code) mismatch")
	}
	if w.Status() != hostcall.StatusOK {
		t.Fatal("non-status error reports a status")
	}
}

func TestAsError(t *testing.T) {
	if hostcall.AsError(nil) != nil {
		t.Fatal("AsError(nil) != nil")
	}
	orig := hostcall.NewError(hostcall.CodeSend, "x")
	wrapped := fmt.Errorf("outer: %w", orig)
	got := hostcall.AsError(wrapped)
	if got == orig {
		t.Fatal("AsError must not alias its input")
	}
	if got.Code() != hostcall.CodeSend {
		t.Fatalf("code = %v", got.Code())
	}
	foreign := hostcall.AsError(io.EOF)
	if foreign.Code() != hostcall.CodeRuntime || !errors.Is(foreign, io.EOF) {
		t.Fatalf("foreign error = %v", foreign)
	}
	bare := hostcall.AsError(hostcall.CodeUTF8)
	if bare.Code() != hostcall.CodeUTF8 {
		t.Fatalf("bare code = %v", bare.Code())
	}
}

func TestTryWritesSlotOnce(t *testing.T) {
	stale := hostcall.NewError(hostcall.CodeIO, "stale")

	slot := stale
	v := hostcall.Try(&slot, 42, nil)
	if v != 42 || slot != nil {
		t.Fatalf("success: v=%d slot=%v", v, slot)
	}

	slot = stale
	v = hostcall.Try(&slot, 42, hostcall.NewError(hostcall.CodeSend, "boom"))
	if v != 0 {
		t.Fatalf("failure returned %d, want zero value", v)
	}
	if slot == nil || slot == stale || slot.Code() != hostcall.CodeSend {
		t.Fatalf("failure slot = %v", slot)
	}

	slot = stale
	hostcall.SetError(&slot, nil)
	if slot != nil {
		t.Fatal("SetError(nil) left a stale error")
	}
	mustPanic(t, "hostcall: nil error slot", func() { hostcall.SetError(nil, nil) })
}
