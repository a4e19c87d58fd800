// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"code.hybscloud.com/hostcall"
)

// serveClient runs fn behind an httptest server and returns its URL.
func serveClient(t *testing.T, h *hostcall.Host, fn func(*hostcall.Downstream)) string {
	t.Helper()
	srv := httptest.NewServer(h.Handler(fn))
	t.Cleanup(srv.Close)
	return srv.URL
}

type clientSeen struct {
	fromClient bool
	method     hostcall.Method
	path       string
	query      string
	token      string
	body       string
	clientIP   string
	copyClient bool
}

func TestDownstreamRoundTrip(t *testing.T) {
	skipRace(t)
	h, _ := newInlineHost(t)
	seen := make(chan clientSeen, 1)
	url := serveClient(t, h, func(d *hostcall.Downstream) {
		req := d.Request()
		var s clientSeen
		s.fromClient = req.IsFromClient()
		s.copyClient = req.CloneWithoutBody().IsFromClient()
		s.method = req.Method()
		s.path, _ = req.Path()
		s.query, _ = req.Query()
		if v, ok := req.Header().Get("x-token"); ok {
			s.token = string(v.Bytes())
		}
		if b := req.TakeBody(); b != nil {
			s.body = b.String()
		}
		if ip, ok := d.ClientIP(); ok {
			s.clientIP = ip.String()
		}
		req.Release()
		seen <- s

		resp := hostcall.NewResponse()
		resp.SetStatus(http.StatusCreated)
		resp.Header().Append("x-reply", []byte("1"))
		resp.Header().Append("x-reply", []byte("2"))
		resp.Body().WriteString("created")
		resp.Body().AppendTrailer("x-sum", []byte("7"))
		d.SendResponse(resp)
	})

	req, _ := http.NewRequest(http.MethodPost, url+"/items?x=1", strings.NewReader("payload"))
	req.Header.Set("X-Token", "abc")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	got, _ := io.ReadAll(res.Body)

	s := <-seen
	if !s.fromClient || s.copyClient {
		t.Fatalf("IsFromClient = %v, copy %v", s.fromClient, s.copyClient)
	}
	if s.method != hostcall.MethodPost || s.path != "/items" || s.query != "x=1" {
		t.Fatalf("request = %v %q %q", s.method, s.path, s.query)
	}
	if s.token != "abc" || s.body != "payload" || s.clientIP != "127.0.0.1" {
		t.Fatalf("request token=%q body=%q ip=%q", s.token, s.body, s.clientIP)
	}
	if res.StatusCode != http.StatusCreated || string(got) != "created" {
		t.Fatalf("response = %d %q", res.StatusCode, got)
	}
	if vals := res.Header.Values("X-Reply"); len(vals) != 2 || vals[0] != "1" || vals[1] != "2" {
		t.Fatalf("x-reply = %v", vals)
	}
	if res.Trailer.Get("X-Sum") != "7" {
		t.Fatalf("trailer = %v", res.Trailer)
	}
}

func TestDownstreamSingleResponse(t *testing.T) {
	skipRace(t)
	h, _ := newInlineHost(t)
	outcome := make(chan error, 1)
	taken := make(chan any, 1)
	url := serveClient(t, h, func(d *hostcall.Downstream) {
		d.Request().Release()
		func() {
			defer func() { taken <- recover() }()
			d.Request()
		}()
		resp := hostcall.NewResponse()
		resp.Body().WriteString("first")
		d.SendResponse(resp)
		second := hostcall.NewResponse()
		err := d.SendResponse(second)
		if err != nil {
			func() {
				defer func() {
					if recover() == nil {
						err = errors.New("rejected response still usable")
					}
				}()
				second.Status()
			}()
		}
		outcome <- err
	})

	res, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if string(got) != "first" {
		t.Fatalf("body = %q", got)
	}
	if err := <-outcome; !errors.Is(err, hostcall.CodeRuntime) {
		t.Fatalf("second response err = %v, want CodeRuntime", err)
	}
	if r := <-taken; r != "hostcall: client request already taken" {
		t.Fatalf("second Request panic = %v", r)
	}
}

func TestDownstreamNoResponse(t *testing.T) {
	skipRace(t)
	h, _ := newInlineHost(t)
	url := serveClient(t, h, func(*hostcall.Downstream) {})
	res, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestDownstreamUnsupportedMethod(t *testing.T) {
	skipRace(t)
	h, _ := newInlineHost(t)
	called := false
	url := serveClient(t, h, func(*hostcall.Downstream) { called = true })
	req, _ := http.NewRequest("BREW", url, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotImplemented || called {
		t.Fatalf("status = %d, called %v", res.StatusCode, called)
	}
}

func TestDownstreamStream(t *testing.T) {
	skipRace(t)
	h, _ := newInlineHost(t)
	writeErr := make(chan error, 1)
	url := serveClient(t, h, func(d *hostcall.Downstream) {
		resp := hostcall.NewResponse()
		resp.Body().WriteString("head:")
		resp.Body().AppendTrailer("x-done", []byte("yes"))
		sb, err := d.StreamResponse(resp)
		if err != nil {
			writeErr <- err
			return
		}
		io.WriteString(sb, "a")
		sb.Append(hostcall.BodyFromString("b"))
		sb.Finish()
		_, err = sb.Write([]byte("late"))
		sb.Release()
		writeErr <- err
	})

	res, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil || string(got) != "head:ab" {
		t.Fatalf("body = %q, %v", got, err)
	}
	if res.Trailer.Get("X-Done") != "yes" {
		t.Fatalf("trailer = %v", res.Trailer)
	}
	if err := <-writeErr; !errors.Is(err, hostcall.CodeIO) {
		t.Fatalf("write after finish err = %v, want CodeIO", err)
	}
}

func TestDownstreamStreamAbandoned(t *testing.T) {
	skipRace(t)
	h, _ := newInlineHost(t)
	url := serveClient(t, h, func(d *hostcall.Downstream) {
		sb, err := d.StreamResponse(hostcall.NewResponse())
		if err != nil {
			return
		}
		io.WriteString(sb, "partial")
		sb.Release()
	})

	res, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if _, err := io.ReadAll(res.Body); err == nil {
		t.Fatal("abandoned stream read as a complete body")
	}
}

func TestDownstreamProxy(t *testing.T) {
	skipRace(t)
	o := newOrigin(t)
	h, b := newHost(t, o)
	url := serveClient(t, h, func(d *hostcall.Downstream) {
		resp, err := d.Request().Send(b)
		if err != nil {
			return
		}
		d.SendResponse(resp)
	})

	req, _ := http.NewRequest(http.MethodPost, url+"/echo", strings.NewReader("ping"))
	req.Header.Set("X-Seq", "9")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if string(got) != "ping" || res.Header.Get("X-Seq") != "9" || res.Header.Get("X-Path") != "/echo" {
		t.Fatalf("proxied = %q %v", got, res.Header)
	}
}
