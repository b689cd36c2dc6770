package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records assignment and routing outcomes.
type FulfillmentMetrics struct {
	assignments     *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	routingDuration *prometheus.HistogramVec
	routingFallback prometheus.Counter
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "production_assignments_total",
		Help: "Production assignment attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_transitions_total",
		Help: "Accepted assignment status transitions by target status.",
	}, []string{"kind", "status"})
	routingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routing_request_duration_seconds",
		Help:    "Latency of routing provider calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	routingFallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routing_fallback_total",
		Help: "Route estimates served by the haversine fallback.",
	})
	reg.MustRegister(assignments, transitions, routingDuration, routingFallback)
	return &FulfillmentMetrics{
		assignments:     assignments,
		transitions:     transitions,
		routingDuration: routingDuration,
		routingFallback: routingFallback,
	}
}

// IncAssignment counts one matcher run with the given outcome
// (assigned, existing, no_nodes, not_eligible).
func (f *FulfillmentMetrics) IncAssignment(outcome string) {
	if f == nil || f.assignments == nil {
		return
	}
	f.assignments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition counts one accepted lifecycle transition.
func (f *FulfillmentMetrics) IncTransition(kind, status string) {
	if f == nil || f.transitions == nil {
		return
	}
	f.transitions.WithLabelValues(normalizeLabel(kind), normalizeLabel(status)).Inc()
}

// ObserveRouting records the latency of one estimate by source.
func (f *FulfillmentMetrics) ObserveRouting(source string, duration time.Duration) {
	if f == nil || f.routingDuration == nil {
		return
	}
	f.routingDuration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncRoutingFallback counts one estimate served by the fallback path.
func (f *FulfillmentMetrics) IncRoutingFallback() {
	if f == nil || f.routingFallback == nil {
		return
	}
	f.routingFallback.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
