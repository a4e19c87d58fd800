// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"log/slog"
	"sync"
)

// Dispatcher runs background I/O for asynchronous operations. The default
// runs every task on its own goroutine. A dispatcher must not run a task
// that reads a streaming body on the caller's goroutine.
type Dispatcher func(task func())

// GoDispatcher runs task on a new goroutine.
func GoDispatcher(task func()) { go task() }

// Option configures a [Host].
type Option func(*Host)

// WithTransport replaces the HTTP transport used to reach backends.
func WithTransport(t Transport) Option {
	return func(h *Host) { h.transport = t }
}

// WithDispatcher replaces the background task runner.
func WithDispatcher(d Dispatcher) Option {
	return func(h *Host) { h.dispatch = d }
}

// WithLogger sets the logger used for host lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithLogEndpoint registers a named log endpoint writing to handler.
func WithLogEndpoint(name string, handler slog.Handler) Option {
	return func(h *Host) { h.endpoints[name] = handler }
}

// WithBackend registers a static backend.
func WithBackend(name string, cfg BackendConfig) Option {
	return func(h *Host) { h.static = append(h.static, namedConfig{name, cfg}) }
}

type namedConfig struct {
	name string
	cfg  BackendConfig
}

// Host owns backends, log endpoints and the machinery that performs
// background I/O on behalf of the caller.
type Host struct {
	mu        sync.RWMutex
	backends  map[string]*Backend
	static    []namedConfig
	endpoints map[string]slog.Handler
	transport Transport
	dispatch  Dispatcher
	logger    *slog.Logger
}

// NewHost builds a host. Static backends given with [WithBackend] that fail
// validation are reported as an error.
func NewHost(opts ...Option) (*Host, error) {
	h := &Host{
		backends:  make(map[string]*Backend),
		endpoints: make(map[string]slog.Handler),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.transport == nil {
		h.transport = NewHTTPTransport()
	}
	if h.dispatch == nil {
		h.dispatch = GoDispatcher
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	for _, s := range h.static {
		if _, err := h.AddBackend(s.name, s.cfg); err != nil {
			return nil, err
		}
	}
	h.static = nil
	return h, nil
}

// AddBackend registers a static backend.
func (h *Host) AddBackend(name string, cfg BackendConfig) (*Backend, error) {
	if !validBackendName(name) {
		return nil, errorf(CodeBackend, "invalid backend name %q", name)
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return h.register(name, cfg, false)
}

func (h *Host) register(name string, cfg BackendConfig, dynamic bool) (*Backend, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.backends[name]; ok {
		code := CodeBackend
		if dynamic {
			code = CodeBackendCreation
		}
		return nil, errorf(code, "backend %q already exists", name)
	}
	b := &Backend{name: name, config: cfg, dynamic: dynamic, host: h}
	h.backends[name] = b
	h.logger.Debug("backend registered", "backend", name, "target", cfg.Target, "dynamic", dynamic)
	return b.Clone(), nil
}

// Backend looks up a backend by name. Unknown names fail with CodeBackend.
func (h *Host) Backend(name string) (*Backend, error) {
	h.mu.RLock()
	b, ok := h.backends[name]
	h.mu.RUnlock()
	if !ok {
		return nil, errorf(CodeBackend, "no backend named %q", name)
	}
	return b.Clone(), nil
}

// NewBackendBuilder starts a dynamic backend named name that reaches target.
func (h *Host) NewBackendBuilder(name, target string) *BackendBuilder {
	return &BackendBuilder{host: h, name: name, config: DefaultBackendConfig(target)}
}

// Dispatch runs task with the host's dispatcher.
func (h *Host) Dispatch(task func()) { h.dispatch(task) }

// Dispatcher returns the host's dispatcher.
func (h *Host) Dispatcher() Dispatcher { return h.dispatch }

// Logger returns the host lifecycle logger.
func (h *Host) Logger() *slog.Logger { return h.logger }
