// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"crypto/x509"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Backend defaults applied by DefaultBackendConfig.
const (
	DefaultConnectTimeout      = time.Second
	DefaultFirstByteTimeout    = 15 * time.Second
	DefaultBetweenBytesTimeout = 10 * time.Second
)

// BackendConfig is the connection policy of a backend. It is a plain value;
// transports may use it as a cache key.
type BackendConfig struct {
	// Target is host:port, optionally given as an http:// or https:// URL.
	Target       string
	OverrideHost string

	ConnectTimeout      time.Duration
	FirstByteTimeout    time.Duration
	BetweenBytesTimeout time.Duration

	UseSSL      bool
	SNIHostname string
	// CACertificate is a PEM bundle trusted in addition to the system roots.
	CACertificate string

	Pooling           bool
	HTTPKeepaliveTime time.Duration

	TCPKeepalive         bool
	TCPKeepaliveTime     time.Duration
	TCPKeepaliveInterval time.Duration
	TCPKeepaliveProbes   int
}

// DefaultBackendConfig returns the defaults for target.
func DefaultBackendConfig(target string) BackendConfig {
	return BackendConfig{
		Target:              target,
		ConnectTimeout:      DefaultConnectTimeout,
		FirstByteTimeout:    DefaultFirstByteTimeout,
		BetweenBytesTimeout: DefaultBetweenBytesTimeout,
		Pooling:             true,
	}
}

// normalize resolves URL-form targets to host:port and checks the policy.
func (c BackendConfig) normalize() (BackendConfig, error) {
	target := c.Target
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return c, wrapError(CodeAddrParse, err)
		}
		switch u.Scheme {
		case "http":
		case "https":
			c.UseSSL = true
		default:
			return c, errorf(CodeAddrParse, "unsupported scheme %q", u.Scheme)
		}
		target = u.Host
	}
	if target == "" {
		return c, newError(CodeAddrParse, "empty backend target")
	}
	if _, _, err := net.SplitHostPort(target); err != nil {
		port := "80"
		if c.UseSSL {
			port = "443"
		}
		target = net.JoinHostPort(target, port)
	}
	c.Target = target
	if c.ConnectTimeout < 0 || c.FirstByteTimeout < 0 || c.BetweenBytesTimeout < 0 {
		return c, newError(CodeBackendCreation, "negative timeout")
	}
	if c.CACertificate != "" && !x509.NewCertPool().AppendCertsFromPEM([]byte(c.CACertificate)) {
		return c, newError(CodeBackendCreation, "no certificate in CA bundle")
	}
	return c, nil
}

func validBackendName(name string) bool {
	if name == "" || len(name) > 255 || !utf8.ValidString(name) {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Backend is a named origin registered with a [Host]. Backends are shared
// references: sending through a backend borrows it.
type Backend struct {
	name    string
	config  BackendConfig
	dynamic bool
	host    *Host
}

// Name returns the registered name.
func (b *Backend) Name() string { return b.name }

// Config returns a copy of the connection policy.
func (b *Backend) Config() BackendConfig { return b.config }

// Target returns the host:port the backend reaches.
func (b *Backend) Target() string { return b.config.Target }

// OverrideHost returns the Host header override, or "".
func (b *Backend) OverrideHost() string { return b.config.OverrideHost }

// ConnectTimeout bounds connection setup.
func (b *Backend) ConnectTimeout() time.Duration { return b.config.ConnectTimeout }

// FirstByteTimeout bounds the wait for the response header.
func (b *Backend) FirstByteTimeout() time.Duration { return b.config.FirstByteTimeout }

// BetweenBytesTimeout bounds the gap between body reads.
func (b *Backend) BetweenBytesTimeout() time.Duration { return b.config.BetweenBytesTimeout }

// IsSSL reports whether the backend is reached over TLS.
func (b *Backend) IsSSL() bool { return b.config.UseSSL }

// IsDynamic reports whether the backend was built at run time.
func (b *Backend) IsDynamic() bool { return b.dynamic }

// Exists reports whether the host still knows this backend by name.
func (b *Backend) Exists() bool {
	got, err := b.host.Backend(b.name)
	return err == nil && got.Equals(b)
}

// Equals reports whether b and o name the same backend with the same policy.
func (b *Backend) Equals(o *Backend) bool {
	return o != nil && b.name == o.name && b.config == o.config && b.host == o.host
}

// Clone returns an independent reference to the same backend.
func (b *Backend) Clone() *Backend {
	cp := *b
	return &cp
}

// Release is a no-op; the host keeps the backend registered.
func (b *Backend) Release() {}

// BackendBuilder assembles a dynamic backend. Every setter consumes the
// receiver and returns a new builder.
type BackendBuilder struct {
	owner
	host   *Host
	name   string
	config BackendConfig
}

func (b *BackendBuilder) next(f func(c *BackendConfig)) *BackendBuilder {
	b.take("BackendBuilder")
	nb := &BackendBuilder{host: b.host, name: b.name, config: b.config}
	f(&nb.config)
	return nb
}

// OverrideHost sets the Host header sent to the backend.
func (b *BackendBuilder) OverrideHost(host string) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.OverrideHost = host })
}

// ConnectTimeout sets the connection setup bound.
func (b *BackendBuilder) ConnectTimeout(d time.Duration) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.ConnectTimeout = d })
}

// FirstByteTimeout sets the response header bound.
func (b *BackendBuilder) FirstByteTimeout(d time.Duration) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.FirstByteTimeout = d })
}

// BetweenBytesTimeout sets the bound between body reads.
func (b *BackendBuilder) BetweenBytesTimeout(d time.Duration) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.BetweenBytesTimeout = d })
}

// EnableSSL reaches the backend over TLS.
func (b *BackendBuilder) EnableSSL() *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.UseSSL = true })
}

// DisableSSL reaches the backend in plain text.
func (b *BackendBuilder) DisableSSL() *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.UseSSL = false })
}

// SNIHostname sets the TLS server name.
func (b *BackendBuilder) SNIHostname(name string) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.SNIHostname = name })
}

// CACertificate adds a PEM bundle to the trusted roots.
func (b *BackendBuilder) CACertificate(pem string) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.CACertificate = pem })
}

// EnablePooling turns connection reuse on or off.
func (b *BackendBuilder) EnablePooling(on bool) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.Pooling = on })
}

// HTTPKeepaliveTime bounds how long an idle connection is kept.
func (b *BackendBuilder) HTTPKeepaliveTime(d time.Duration) *BackendBuilder {
	return b.next(func(c *BackendConfig) { c.HTTPKeepaliveTime = d })
}

// TCPKeepalive enables TCP keepalive with the given idle time, probe
// interval and probe count. Zero values keep the system defaults.
func (b *BackendBuilder) TCPKeepalive(idle, interval time.Duration, probes int) *BackendBuilder {
	return b.next(func(c *BackendConfig) {
		c.TCPKeepalive = true
		c.TCPKeepaliveTime = idle
		c.TCPKeepaliveInterval = interval
		c.TCPKeepaliveProbes = probes
	})
}

// Finish consumes the builder and registers the backend with the host.
// Invalid names, unparsable targets and duplicate names fail with
// CodeBackendCreation.
func (b *BackendBuilder) Finish() (*Backend, error) {
	b.take("BackendBuilder")
	if !validBackendName(b.name) {
		return nil, errorf(CodeBackendCreation, "invalid backend name %q", b.name)
	}
	cfg, err := b.config.normalize()
	if err != nil {
		e := AsError(err)
		e.code = CodeBackendCreation
		return nil, e
	}
	return b.host.register(b.name, cfg, true)
}

// Release discards an unfinished builder.
func (b *BackendBuilder) Release() {
	b.consumed = true
}
