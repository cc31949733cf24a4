// Package metrics exposes Prometheus collectors for the engine's stepping,
// breakpoint, and timeline-eviction activity, grounded on the pack's
// prometheus/client_golang usage for service-level instrumentation.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the debugger's collectors behind a single registerable
// handle; cmd/sorodbg's server verb registers them on a Prometheus registry
// but serves no HTTP /metrics endpoint.
type Registry struct {
	StepsTotal             prometheus.Counter
	BreakpointHitsTotal    prometheus.Counter
	TimelineEvictionsTotal prometheus.Counter
	ActiveSessions         prometheus.Gauge
}

// NewRegistry constructs a Registry and registers its collectors against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		StepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sorodbg_steps_total",
			Help: "Total number of single-instruction steps executed.",
		}),
		BreakpointHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sorodbg_breakpoint_hits_total",
			Help: "Total number of breakpoint pauses triggered.",
		}),
		TimelineEvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sorodbg_timeline_evictions_total",
			Help: "Total number of timeline snapshots evicted at capacity.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sorodbg_active_sessions",
			Help: "Number of currently connected remote-debug sessions.",
		}),
	}
	reg.MustRegister(r.StepsTotal, r.BreakpointHitsTotal, r.TimelineEvictionsTotal, r.ActiveSessions)
	return r
}
