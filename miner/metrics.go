package miner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	mined          prometheus.Counter
	failures       *prometheus.CounterVec
	hashes         prometheus.Counter
	bestDifficulty prometheus.Gauge
	publishErrors  prometheus.Counter
}

// newMetrics registers with reg; a nil reg leaves the collectors unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		mined: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "noss",
			Subsystem: "miner",
			Name:      "mined_total",
			Help:      "Events that reached the target difficulty",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "noss",
			Subsystem: "miner",
			Name:      "failures_total",
			Help:      "Mining runs that stopped without reaching the target difficulty",
		}, []string{"reason"}),
		hashes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "noss",
			Subsystem: "miner",
			Name:      "hashes_total",
			Help:      "Candidate event ids computed",
		}),
		bestDifficulty: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "noss",
			Subsystem: "miner",
			Name:      "best_difficulty",
			Help:      "Highest difficulty reached by the current mining run",
		}),
		publishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "noss",
			Subsystem: "miner",
			Name:      "publish_errors_total",
			Help:      "Mined events the inscription endpoint did not accept",
		}),
	}
}
