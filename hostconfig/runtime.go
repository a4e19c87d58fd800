// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostconfig

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/configstore"
	"code.hybscloud.com/hostcall/kvstore"
	"code.hybscloud.com/hostcall/secretstore"
)

// Runtime is a host together with the stores it exposes.
type Runtime struct {
	Host    *hostcall.Host
	KV      *kvstore.Registry
	Config  *configstore.Registry
	Secrets *secretstore.Registry
}

// LogOutput is where configured log endpoints write. Tests may replace it.
var LogOutput io.Writer = os.Stderr

// Build assembles the runtime described by c. Extra options are applied to
// the host after the configured ones.
func (c *Config) Build(opts ...hostcall.Option) (*Runtime, error) {
	var hostOpts []hostcall.Option
	for _, b := range c.Backends {
		hostOpts = append(hostOpts, hostcall.WithBackend(b.Name, b.backendConfig()))
	}
	for _, ep := range c.LogEndpoints {
		h, err := ep.handler()
		if err != nil {
			return nil, err
		}
		hostOpts = append(hostOpts, hostcall.WithLogEndpoint(ep.Name, h))
	}
	host, err := hostcall.NewHost(append(hostOpts, opts...)...)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Host:    host,
		KV:      kvstore.NewRegistry(),
		Config:  configstore.NewRegistry(),
		Secrets: secretstore.NewRegistry(),
	}
	for _, kc := range c.KVStores {
		if err := rt.addKV(kc); err != nil {
			return nil, errors.Join(err, rt.Close())
		}
	}
	for name, items := range c.ConfigStores {
		s, err := configstore.New(name, items)
		if err == nil {
			err = rt.Config.Add(s)
		}
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
	}
	for name, items := range c.SecretStores {
		raw := make(map[string][]byte, len(items))
		for k, v := range items {
			raw[k] = []byte(v)
		}
		s, err := secretstore.New(name, raw)
		if err == nil {
			err = rt.Secrets.Add(s)
		}
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
	}
	return rt, nil
}

func (rt *Runtime) addKV(kc KVStoreConfig) error {
	opts := kvstore.Options{
		MaxValueSize: kc.MaxValueSize,
		RateLimit:    kc.RateLimit,
		Burst:        kc.Burst,
		Dispatcher:   rt.Host.Dispatcher(),
	}
	var (
		s   *kvstore.Store
		err error
	)
	if kc.Path != "" {
		s, err = kvstore.OpenFile(kc.Name, kc.Path, opts)
	} else {
		s, err = kvstore.OpenMemory(kc.Name, opts)
	}
	if err != nil {
		return err
	}
	if err := rt.KV.Add(s); err != nil {
		return errors.Join(err, s.Close())
	}
	return nil
}

// Close releases the stores.
func (rt *Runtime) Close() error {
	return rt.KV.Close()
}

// LoadRuntime is Load followed by Build.
func LoadRuntime(path string, opts ...hostcall.Option) (*Runtime, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	return c.Build(opts...)
}

func (b BackendConfig) backendConfig() hostcall.BackendConfig {
	cfg := hostcall.DefaultBackendConfig(b.Target)
	cfg.OverrideHost = b.OverrideHost
	if b.ConnectTimeout != 0 {
		cfg.ConnectTimeout = b.ConnectTimeout
	}
	if b.FirstByteTimeout != 0 {
		cfg.FirstByteTimeout = b.FirstByteTimeout
	}
	if b.BetweenBytesTimeout != 0 {
		cfg.BetweenBytesTimeout = b.BetweenBytesTimeout
	}
	cfg.UseSSL = b.UseSSL
	cfg.SNIHostname = b.SNIHostname
	cfg.CACertificate = b.CACertificate
	if b.Pooling != nil {
		cfg.Pooling = *b.Pooling
	}
	cfg.HTTPKeepaliveTime = b.HTTPKeepalive
	if b.TCPKeepalive != nil {
		cfg.TCPKeepalive = true
		cfg.TCPKeepaliveTime = b.TCPKeepalive.Time
		cfg.TCPKeepaliveInterval = b.TCPKeepalive.Interval
		cfg.TCPKeepaliveProbes = b.TCPKeepalive.Probes
	}
	return cfg
}

func (ep LogEndpointConfig) handler() (slog.Handler, error) {
	var level slog.Level
	if ep.Level != "" {
		if err := level.UnmarshalText([]byte(ep.Level)); err != nil {
			return nil, fmt.Errorf("log endpoint %q: %w", ep.Name, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(ep.Format) {
	case "", "text":
		return slog.NewTextHandler(LogOutput, opts), nil
	case "json":
		return slog.NewJSONHandler(LogOutput, opts), nil
	default:
		return nil, fmt.Errorf("log endpoint %q: unknown format %q", ep.Name, ep.Format)
	}
}
