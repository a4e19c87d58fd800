// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"code.hybscloud.com/hostcall"
)

func TestStreamingEcho(t *testing.T) {
	skipRace(t)
	o := newOrigin(t)
	_, b := newHost(t, o)

	req := hostcall.Post("http://example.test/echo")
	req.SetBodyBytes([]byte(">"))
	sb, p, err := req.SendAsyncStreaming(b)
	if err != nil {
		t.Fatalf("SendAsyncStreaming: %v", err)
	}
	if _, err := io.WriteString(sb, "hello "); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sb.Append(hostcall.BodyFromString("world")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := sb.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := sb.Write([]byte("late")); !errors.Is(err, hostcall.CodeIO) {
		t.Fatalf("write after finish err = %v, want CodeIO", err)
	}
	if err := sb.Finish(); !errors.Is(err, hostcall.CodeIO) {
		t.Fatalf("second finish err = %v, want CodeIO", err)
	}

	resp, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := body(t, resp); got != ">hello world" {
		t.Fatalf("body = %q", got)
	}
	sb.Release()
	mustPanic(t, "hostcall: StreamingBody used after it was consumed", func() { sb.Write(nil) })
}

func TestStreamingAbandoned(t *testing.T) {
	skipRace(t)
	o := newOrigin(t)
	_, b := newHost(t, o)

	sb, p, err := hostcall.Post("http://example.test/echo").SendAsyncStreaming(b)
	if err != nil {
		t.Fatalf("SendAsyncStreaming: %v", err)
	}
	io.WriteString(sb, "partial")
	sb.Release()
	if _, err := p.Wait(); !errors.Is(err, hostcall.CodeSend) {
		t.Fatalf("Wait err = %v, want CodeSend", err)
	}
}

func TestSendConsumesRequest(t *testing.T) {
	_, b := newInlineHost(t)
	req := hostcall.Get("http://origin.test/x")
	if _, err := req.SendAsync(nil); !errors.Is(err, hostcall.CodeBackend) {
		t.Fatalf("nil backend err = %v", err)
	}
	mustPanic(t, "hostcall: Request used after it was consumed", func() { req.SendAsync(b) })
}

func TestStreamingPeerStopsReading(t *testing.T) {
	skipRace(t)
	h, err := hostcall.NewHost(
		hostcall.WithBackend("origin", hostcall.DefaultBackendConfig("origin.test:80")),
		hostcall.WithTransport(transportFunc(func(_ context.Context, _ hostcall.BackendConfig, out *hostcall.Outgoing) (*hostcall.Response, error) {
			head := make([]byte, 3)
			if _, err := io.ReadFull(out.Body, head); err != nil {
				return nil, hostcall.WrapError(hostcall.CodeSend, err)
			}
			resp := hostcall.NewResponse()
			resp.Body().Write(head)
			return resp, nil
		})),
		hostcall.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := h.Backend("origin")
	sb, p, err := hostcall.Post("http://origin.test/").SendAsyncStreaming(b)
	if err != nil {
		t.Fatalf("SendAsyncStreaming: %v", err)
	}
	n, err := sb.Write([]byte("0123456789"))
	if n != 3 || !errors.Is(err, hostcall.CodeIO) {
		t.Fatalf("Write = %d, %v, want 3 and CodeIO", n, err)
	}
	resp, err := p.Wait()
	if err != nil || body(t, resp) != "012" {
		t.Fatalf("Wait = %v, %v", resp, err)
	}
	if n, err := sb.Write([]byte("x")); n != 0 || !errors.Is(err, hostcall.CodeIO) {
		t.Fatalf("Write after the exchange = %d, %v", n, err)
	}
	sb.Release()
}
