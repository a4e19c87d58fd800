// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const redactedValue = "[REDACTED]"

var sensitiveKeyParts = []string{"authorization", "cookie", "secret", "token", "password"}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// redactingHandler masks attribute values whose keys look like credentials.
type redactingHandler struct {
	next slog.Handler
}

func redact(next slog.Handler) slog.Handler {
	return &redactingHandler{next: next}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(out)}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		out := make([]any, len(group))
		for i, g := range group {
			out[i] = redactAttr(g)
		}
		return slog.Group(a.Key, out...)
	}
	return a
}

// LogEndpoint is a named log sink configured on the host.
type LogEndpoint struct {
	name   string
	logger *slog.Logger
}

func validEndpointName(name string) bool {
	if name == "" || len(name) > 255 || !utf8.ValidString(name) {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f })
}

// LogEndpoint opens the endpoint called name. Malformed or unknown names
// fail with CodeLogging.
func (h *Host) LogEndpoint(name string) (*LogEndpoint, error) {
	if !validEndpointName(name) {
		return nil, errorf(CodeLogging, "invalid endpoint name %q", name)
	}
	handler, ok := h.endpoints[name]
	if !ok {
		return nil, errorf(CodeLogging, "no log endpoint named %q", name)
	}
	return &LogEndpoint{name: name, logger: slog.New(redact(handler)).With("endpoint", name)}, nil
}

// Name returns the endpoint name.
func (e *LogEndpoint) Name() string { return e.name }

// Logger returns the endpoint as a structured logger.
func (e *LogEndpoint) Logger() *slog.Logger { return e.logger }

// Log writes one record at level.
func (e *LogEndpoint) Log(level slog.Level, msg string, args ...any) {
	e.logger.Log(context.Background(), level, msg, args...)
}

// Write logs p as one Info record, trailing newlines trimmed.
func (e *LogEndpoint) Write(p []byte) (int, error) {
	e.logger.Info(strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}

// Release is a no-op; endpoints live as long as the host.
func (e *LogEndpoint) Release() {}
