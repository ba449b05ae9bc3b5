// Package telemetry holds the Prometheus counters for ingestion and queries.
package telemetry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingest outcomes used as the "outcome" label.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeExcluded = "excluded"
)

var matchedBuckets = []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}

// Metrics owns a private registry so independent instances (and tests) do
// not collide on the global one. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ingestEvents *prometheus.CounterVec
	collisions   prometheus.Counter
	queries      *prometheus.CounterVec
	matched      prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingestEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apmq",
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Events seen by ingestion, by outcome",
		}, []string{"outcome"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "apmq",
			Subsystem: "ingest",
			Name:      "collisions_total",
			Help:      "Inserts that replaced an event stored at the same time-key",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apmq",
			Name:      "queries_total",
			Help:      "Executed queries, by kind",
		}, []string{"kind"}),
		matched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apmq",
			Name:      "query_matched_events",
			Help:      "Number of stored events matched by a query window",
			Buckets:   matchedBuckets,
		}),
	}

	m.registry.MustRegister(m.ingestEvents, m.collisions, m.queries, m.matched)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordIngest counts one event with the given outcome.
func (m *Metrics) RecordIngest(outcome string) {
	if m == nil {
		return
	}
	m.ingestEvents.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordCollision counts one time-key overwrite.
func (m *Metrics) RecordCollision() {
	if m == nil {
		return
	}
	m.collisions.Inc()
}

// RecordQuery counts one query of kind that matched n events.
func (m *Metrics) RecordQuery(kind string, n int) {
	if m == nil {
		return
	}
	m.queries.With(prometheus.Labels{"kind": kind}).Inc()
	m.matched.Observe(float64(n))
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers the registry into name-sorted samples. Histograms are
// reported as _count and _sum.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var pairs []string
			for _, lp := range metric.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}
			labels := strings.Join(pairs, ",")

			switch {
			case metric.GetCounter() != nil:
				samples = append(samples, Sample{Name: mf.GetName(), Labels: labels, Value: metric.GetCounter().GetValue()})
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				samples = append(samples,
					Sample{Name: mf.GetName() + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: mf.GetName() + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})

	return samples, nil
}
