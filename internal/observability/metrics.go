package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the router daemon.
type Metrics struct {
	registry         *prometheus.Registry
	RouteRequests    *prometheus.CounterVec
	RouteDuration    *prometheus.HistogramVec
	ProviderAttempts *prometheus.CounterVec
	KeyRotations     *prometheus.CounterVec
	ToolReads        *prometheus.CounterVec
	ChainExhausted   *prometheus.CounterVec
	ActiveSession    *prometheus.GaugeVec
	TransportErrs    *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with router collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	reqs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_route_requests_total",
		Help: "Routed requests by task kind and outcome",
	}, []string{"kind", "outcome"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jarvis_route_duration_seconds",
		Help:    "End-to-end routing duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "outcome"})

	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_provider_attempts_total",
		Help: "Provider invocations by provider, model and result",
	}, []string{"provider", "model", "result"})

	rotations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_credential_rotations_total",
		Help: "Credential pool rotations by provider and failure class",
	}, []string{"provider", "reason"})

	reads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_tool_reads_total",
		Help: "read_file tool requests by result",
	}, []string{"result"})

	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_chain_exhausted_total",
		Help: "Fallback chains that ran out of entries",
	}, []string{"chain"})

	active := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jarvis_transport_active_sessions",
		Help: "Active streaming sessions by transport",
	}, []string{"transport"})

	trErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_transport_errors_total",
		Help: "Transport-level errors (handler/streaming) by transport and reason",
	}, []string{"transport", "reason"})

	reg.MustRegister(reqs, durs, attempts, rotations, reads, exhausted, active, trErrors)

	return &Metrics{
		registry:         reg,
		RouteRequests:    reqs,
		RouteDuration:    durs,
		ProviderAttempts: attempts,
		KeyRotations:     rotations,
		ToolReads:        reads,
		ChainExhausted:   exhausted,
		ActiveSession:    active,
		TransportErrs:    trErrors,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRoute records the outcome and duration of one routed request.
func (m *Metrics) RecordRoute(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	kind = orUnknown(kind)
	outcome = orUnknown(outcome)
	m.RouteRequests.WithLabelValues(kind, outcome).Inc()
	m.RouteDuration.WithLabelValues(kind, outcome).Observe(duration.Seconds())
}

// RecordAttempt counts one provider call.
func (m *Metrics) RecordAttempt(provider, model, result string) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(orUnknown(provider), orUnknown(model), orUnknown(result)).Inc()
}

// RecordRotation counts a credential rotation.
func (m *Metrics) RecordRotation(provider, reason string) {
	if m == nil {
		return
	}
	m.KeyRotations.WithLabelValues(orUnknown(provider), orUnknown(reason)).Inc()
}

// RecordToolRead counts a read_file request by result.
func (m *Metrics) RecordToolRead(result string) {
	if m == nil {
		return
	}
	m.ToolReads.WithLabelValues(orUnknown(result)).Inc()
}

// RecordExhausted counts a chain exhaustion.
func (m *Metrics) RecordExhausted(chain string) {
	if m == nil {
		return
	}
	m.ChainExhausted.WithLabelValues(orUnknown(chain)).Inc()
}

// IncActiveSessions increments the active session gauge.
func (m *Metrics) IncActiveSessions(transport string) {
	if m == nil {
		return
	}
	m.ActiveSession.WithLabelValues(transport).Inc()
}

// DecActiveSessions decrements the active session gauge.
func (m *Metrics) DecActiveSessions(transport string) {
	if m == nil {
		return
	}
	m.ActiveSession.WithLabelValues(transport).Dec()
}

// RecordTransportError records a transport-level error.
func (m *Metrics) RecordTransportError(transport, reason string) {
	if m == nil {
		return
	}
	m.TransportErrs.WithLabelValues(orUnknown(transport), orUnknown(reason)).Inc()
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
