// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"code.hybscloud.com/hostcall"
)

func newLogHost(t *testing.T, buf *bytes.Buffer) *hostcall.Host {
	t.Helper()
	h, err := hostcall.NewHost(
		hostcall.WithLogger(discardLogger()),
		hostcall.WithLogEndpoint("audit", slog.NewTextHandler(buf, nil)),
	)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	return h
}

func TestLogEndpointRedacts(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHost(t, &buf)
	ep, err := h.LogEndpoint("audit")
	if err != nil {
		t.Fatalf("LogEndpoint: %v", err)
	}
	if ep.Name() != "audit" {
		t.Fatalf("Name = %q", ep.Name())
	}
	ep.Log(slog.LevelInfo, "login", "Authorization", "Bearer abc", "user", "kim",
		slog.Group("req", "session_token", "xyz", "path", "/"))

	out := buf.String()
	for _, want := range []string{"msg=login", "endpoint=audit", "Authorization=[REDACTED]", "user=kim", "req.session_token=[REDACTED]", "req.path=/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	for _, leak := range []string{"abc", "xyz"} {
		if strings.Contains(out, leak) {
			t.Fatalf("output %q leaks %q", out, leak)
		}
	}

	buf.Reset()
	ep.Logger().With("password", "hunter2").Info("with")
	if strings.Contains(buf.String(), "hunter2") {
		t.Fatalf("WithAttrs leaked: %q", buf.String())
	}
}

func TestLogEndpointWrite(t *testing.T) {
	var buf bytes.Buffer
	ep, err := newLogHost(t, &buf).LogEndpoint("audit")
	if err != nil {
		t.Fatalf("LogEndpoint: %v", err)
	}
	n, err := ep.Write([]byte("plain line\n"))
	if err != nil || n != len("plain line\n") {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if !strings.Contains(buf.String(), `msg="plain line"`) {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestLogEndpointNames(t *testing.T) {
	h := newLogHost(t, &bytes.Buffer{})
	for _, name := range []string{"", "missing", "bad\x00name"} {
		if _, err := h.LogEndpoint(name); !errors.Is(err, hostcall.CodeLogging) {
			t.Fatalf("LogEndpoint(%q) err = %v, want CodeLogging", name, err)
		}
	}
}
