package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	actionsApplied  *prometheus.CounterVec
	actionsRejected *prometheus.CounterVec
	height          prometheus.Gauge
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			actionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_actions_applied_total",
				Help: "Count of committed actions by kind.",
			}, []string{"kind"}),
			actionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_actions_rejected_total",
				Help: "Count of rejected actions by kind and rejection class.",
			}, []string{"kind", "reason"}),
			height: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_height",
				Help: "Height of the last applied action.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.actionsApplied,
			ledgerRegistry.actionsRejected,
			ledgerRegistry.height,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) ObserveApplied(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.actionsApplied.WithLabelValues(kind).Inc()
}

func (m *LedgerMetrics) ObserveRejected(kind, reason string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	m.actionsRejected.WithLabelValues(kind, reason).Inc()
}

func (m *LedgerMetrics) SetHeight(height uint64) {
	if m == nil {
		return
	}
	m.height.Set(float64(height))
}
