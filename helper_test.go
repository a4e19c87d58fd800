// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/hostcall"
)

// mustPanic runs f and fails unless it panics with the message want.
func mustPanic(t *testing.T, want string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %q", want)
		}
		msg, ok := r.(string)
		if !ok || msg != want {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f()
}

// origin is a test backend. Requests to /gate/<name> block until the gate
// called name is opened and answer with body <name>. Requests to /echo
// answer with the request body. Every response carries the request path in
// X-Path and two X-Multi values.
type origin struct {
	srv    *httptest.Server
	mu     sync.Mutex
	gates  map[string]chan struct{}
	// served counts completed responses.
	served atomic.Int32
}

func newOrigin(t *testing.T) *origin {
	t.Helper()
	o := &origin{gates: make(map[string]chan struct{})}
	o.srv = httptest.NewServer(http.HandlerFunc(o.serve))
	t.Cleanup(func() {
		o.mu.Lock()
		for name, g := range o.gates {
			select {
			case <-g:
			default:
				close(g)
			}
			delete(o.gates, name)
		}
		o.mu.Unlock()
		o.srv.Close()
	})
	return o
}

func (o *origin) gate(name string) chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	g, ok := o.gates[name]
	if !ok {
		g = make(chan struct{})
		o.gates[name] = g
	}
	return g
}

func (o *origin) open(name string) {
	close(o.gate(name))
}

func (o *origin) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Path", r.URL.Path)
	w.Header().Add("X-Multi", "a")
	w.Header().Add("X-Multi", "b")
	switch {
	case strings.HasPrefix(r.URL.Path, "/gate/"):
		name := strings.TrimPrefix(r.URL.Path, "/gate/")
		<-o.gate(name)
		io.WriteString(w, name)
		o.served.Add(1)
	case r.URL.Path == "/echo":
		w.Header().Set("X-Seq", r.Header.Get("X-Seq"))
		io.Copy(w, r.Body)
	case r.URL.Path == "/status/418":
		w.WriteHeader(http.StatusTeapot)
	default:
		io.WriteString(w, "ok")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newHost returns a host with one backend "origin" pointing at o.
func newHost(t *testing.T, o *origin, opts ...hostcall.Option) (*hostcall.Host, *hostcall.Backend) {
	t.Helper()
	opts = append([]hostcall.Option{
		hostcall.WithBackend("origin", hostcall.DefaultBackendConfig(o.srv.URL)),
		hostcall.WithLogger(discardLogger()),
	}, opts...)
	h, err := hostcall.NewHost(opts...)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	b, err := h.Backend("origin")
	if err != nil {
		t.Fatalf("Backend: %v", err)
	}
	return h, b
}

// transportFunc adapts a function to hostcall.Transport.
type transportFunc func(ctx context.Context, cfg hostcall.BackendConfig, out *hostcall.Outgoing) (*hostcall.Response, error)

func (f transportFunc) RoundTrip(ctx context.Context, cfg hostcall.BackendConfig, out *hostcall.Outgoing) (*hostcall.Response, error) {
	return f(ctx, cfg, out)
}

// inline runs every task before SendAsync returns, so completions are ready
// in submission order.
func inline(task func()) { task() }

// pathTransport answers every request with the request path as body.
// Paths starting with /fail fail with CodeSend.
func pathTransport() hostcall.Transport {
	return transportFunc(func(_ context.Context, _ hostcall.BackendConfig, out *hostcall.Outgoing) (*hostcall.Response, error) {
		if strings.HasPrefix(out.URL.Path, "/fail") {
			return nil, hostcall.NewError(hostcall.CodeSend, "refused")
		}
		resp := hostcall.NewResponse()
		resp.Body().WriteString(out.URL.Path)
		return resp, nil
	})
}

// newInlineHost returns a host whose exchanges resolve synchronously.
func newInlineHost(t *testing.T) (*hostcall.Host, *hostcall.Backend) {
	t.Helper()
	h, err := hostcall.NewHost(
		hostcall.WithBackend("origin", hostcall.DefaultBackendConfig("origin.test:80")),
		hostcall.WithTransport(pathTransport()),
		hostcall.WithDispatcher(inline),
		hostcall.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	b, err := h.Backend("origin")
	if err != nil {
		t.Fatalf("Backend: %v", err)
	}
	return h, b
}

func body(t *testing.T, r *hostcall.Response) string {
	t.Helper()
	return r.Body().String()
}
