// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hostcall"

var (
	pendingInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "pending_inflight",
		Help:      "Asynchronous operations whose background I/O has not completed.",
	})
	pendingResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "pending_resolved_total",
		Help:      "Asynchronous operations resolved by the I/O side, by outcome.",
	}, []string{"outcome"})
	selectTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "select_total",
		Help:      "Completed select calls.",
	})
	liveHandles = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "live_handles",
		Help:      "Handles currently issued, by resource type.",
	}, []string{"type"})
)

const (
	outcomeResponse = "response"
	outcomeError    = "error"
)

// RegisterMetrics registers the package collectors with reg.
// Collectors that are already registered are left in place.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{pendingInflight, pendingResolved, selectTotal, liveHandles} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Collectors returns the package collectors, for callers that assemble
// their own registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{pendingInflight, pendingResolved, selectTotal, liveHandles}
}
