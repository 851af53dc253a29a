package estats

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "solo"
	subsystem = "elect"
)

type Stats struct {
	GaugeRole                prometheus.Gauge
	CounterTransitionsTotal  *prometheus.CounterVec
	CounterMessagesTotal     *prometheus.CounterVec
	CounterPublishTotal      *prometheus.CounterVec
	CounterPublishErrorTotal prometheus.Counter
	CounterSplitBrainTotal   prometheus.Counter
}

func NewSyncStats() *Stats {
	// 0 unknown, 1 follower, 2 leader
	GaugeRole := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "role",
		Help:      "Current role of this peer.",
	})

	CounterTransitionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "transitions_total",
		Help:      "Number of role transitions.",
	}, []string{"role"})

	CounterMessagesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "messages_total",
		Help:      "Number of election messages received.",
	}, []string{"kind"})

	CounterPublishTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "publish_total",
		Help:      "Number of election messages published.",
	}, []string{"kind"})

	CounterPublishErrorTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "publish_error_total",
		Help:      "Number of failed publishes.",
	})

	CounterSplitBrainTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "split_brain_total",
		Help:      "Number of times a concurrent leader was observed.",
	})

	prometheus.MustRegister(
		GaugeRole,
		CounterTransitionsTotal,
		CounterMessagesTotal,
		CounterPublishTotal,
		CounterPublishErrorTotal,
		CounterSplitBrainTotal,
	)

	return &Stats{
		GaugeRole:                GaugeRole,
		CounterTransitionsTotal:  CounterTransitionsTotal,
		CounterMessagesTotal:     CounterMessagesTotal,
		CounterPublishTotal:      CounterPublishTotal,
		CounterPublishErrorTotal: CounterPublishErrorTotal,
		CounterSplitBrainTotal:   CounterSplitBrainTotal,
	}
}
