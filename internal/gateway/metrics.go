package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "barobaro",
			Subsystem: "gateway",
			Name:      "command_duration_seconds",
			Help:      "Round-trip time of backend commands.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	commandFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barobaro",
			Subsystem: "gateway",
			Name:      "command_failures_total",
			Help:      "Backend commands that failed, by stage.",
		},
		[]string{"command", "op"},
	)
)
