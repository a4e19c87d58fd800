// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command hostcall-demo loads a host config, fans out requests to one
// backend, collects the responses with select and reports metrics.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/hostconfig"
	"code.hybscloud.com/hostcall/kvstore"
	"github.com/fulldump/goconfig"
	"github.com/prometheus/client_golang/prometheus"
)

// Configuration holds the command-line flags.
type Configuration struct {
	Config  string `usage:"host config file (defaults to $HOSTCALL_CONFIG)"`
	Backend string `usage:"backend to send requests to"`
	URL     string `usage:"request URL"`
	Fanout  int    `usage:"number of concurrent requests"`
	KVStore string `usage:"key-value store that records response statuses"`
	Verbose bool   `usage:"log at debug level"`
}

func main() {
	c := Configuration{
		Backend: "origin",
		URL:     "http://origin/",
		Fanout:  3,
	}
	goconfig.Read(&c)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(c, logger); err != nil {
		logger.Error("demo failed", "err", err)
		os.Exit(1)
	}
}

func run(c Configuration, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	if err := hostcall.RegisterMetrics(reg); err != nil {
		return err
	}

	rt, err := hostconfig.LoadRuntime(c.Config, hostcall.WithLogger(logger))
	if err != nil {
		return err
	}
	defer rt.Close()

	backend, err := rt.Host.Backend(c.Backend)
	if err != nil {
		return err
	}

	var store *kvstore.Store
	if c.KVStore != "" {
		if store, err = rt.KV.Open(c.KVStore); err != nil {
			return err
		}
	}

	group := make([]*hostcall.PendingRequest, 0, c.Fanout)
	for i := range c.Fanout {
		req := hostcall.Get(c.URL)
		if err := req.SetHeader("x-demo-seq", []byte(fmt.Sprint(i))); err != nil {
			return err
		}
		p, err := req.SendAsync(backend)
		if err != nil {
			return err
		}
		group = append(group, p)
	}

	for len(group) > 0 {
		resp, rest, err := hostcall.Select(group)
		group = rest
		if err != nil {
			logger.Warn("request failed", "err", err)
			continue
		}
		seq, _ := resp.BackendRequest().Header().Get("x-demo-seq")
		s, _ := seq.Text()
		logger.Info("response", "seq", s, "status", resp.Status(), "bytes", resp.Body().Len())
		if store != nil {
			body := hostcall.BodyFromString(fmt.Sprint(resp.Status()))
			if err := store.Insert("status/"+s, body); err != nil {
				logger.Warn("record status", "err", err)
			}
		}
		resp.Release()
	}

	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				logger.Info("metric", "name", mf.GetName(), "labels", m.GetLabel(), "value", m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				logger.Info("metric", "name", mf.GetName(), "labels", m.GetLabel(), "value", m.GetGauge().GetValue())
			}
		}
	}
	return nil
}
