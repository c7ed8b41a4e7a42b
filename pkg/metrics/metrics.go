package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid_input"
	OutcomeUpstream     = "upstream_error"
	OutcomeInternal     = "internal_error"
)

var (
	RelayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cofounder",
		Subsystem: "relay",
		Name:      "requests_total",
		Help:      "Chat relay requests by transport and outcome.",
	}, []string{"transport", "outcome"})

	CompletionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cofounder",
		Subsystem: "completion",
		Name:      "request_duration_seconds",
		Help:      "Latency of completion service calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"model", "status"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cofounder",
		Subsystem: "storage",
		Name:      "uploads_total",
		Help:      "Object uploads by backend and result.",
	}, []string{"backend", "result"})
)
