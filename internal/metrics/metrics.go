// Package metrics holds the prometheus collectors of the continuation engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yemot_router"

// Metrics are the engine collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	ActiveCalls     prometheus.Gauge
	CallsStarted    prometheus.Counter
	CallsEnded      *prometheus.CounterVec
	Reads           *prometheus.CounterVec
	Resumptions     prometheus.Counter
	BusyRejections  prometheus.Counter
	ResendsNoValue  prometheus.Counter
	HandlerDuration prometheus.Histogram
}

// New creates the collectors and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_calls",
			Help:      "Number of live call sessions.",
		}),
		CallsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_started_total",
			Help:      "Calls that started a handler.",
		}),
		CallsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_ended_total",
			Help:      "Calls that ended, by end reason.",
		}, []string{"reason"}),
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Suspending reads emitted, by mode.",
		}, []string{"mode"}),
		Resumptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resumptions_total",
			Help:      "Pending reads resolved by a continuation request.",
		}),
		BusyRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busy_rejections_total",
			Help:      "Requests rejected because the call was processing another request.",
		}),
		ResendsNoValue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instruction_resends_total",
			Help:      "Continuation requests without the pending value that re-sent the instruction.",
		}),
		HandlerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Lifetime of a call from first request to end.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}

	m.registry.MustRegister(
		m.ActiveCalls,
		m.CallsStarted,
		m.CallsEnded,
		m.Reads,
		m.Resumptions,
		m.BusyRejections,
		m.ResendsNoValue,
		m.HandlerDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
