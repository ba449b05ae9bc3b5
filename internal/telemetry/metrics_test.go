package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIngest(t *testing.T) {
	m := New()
	m.RecordIngest(OutcomeAccepted)
	m.RecordIngest(OutcomeAccepted)
	m.RecordIngest(OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingestEvents.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestEvents.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ingestEvents.WithLabelValues(OutcomeExcluded)))
}

func TestRecordCollision(t *testing.T) {
	m := New()
	m.RecordCollision()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collisions))
}

func TestRecordQuery(t *testing.T) {
	m := New()
	m.RecordQuery("latency", 3)
	m.RecordQuery("latency", 0)
	m.RecordQuery("error", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("latency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("error")))
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.RecordIngest(OutcomeAccepted)
	m.RecordCollision()
	m.RecordQuery("throughput", 4)

	samples, err := m.Snapshot()
	require.NoError(t, err)

	byKey := make(map[string]float64)
	for _, s := range samples {
		byKey[s.Name+"{"+s.Labels+"}"] = s.Value
	}

	assert.Equal(t, 1.0, byKey["apmq_ingest_events_total{outcome=accepted}"])
	assert.Equal(t, 1.0, byKey["apmq_ingest_collisions_total{}"])
	assert.Equal(t, 1.0, byKey["apmq_queries_total{kind=throughput}"])
	assert.Equal(t, 1.0, byKey["apmq_query_matched_events_count{}"])
	assert.Equal(t, 4.0, byKey["apmq_query_matched_events_sum{}"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIngest(OutcomeAccepted)
		m.RecordCollision()
		m.RecordQuery("error", 1)
	})

	samples, err := m.Snapshot()
	assert.NoError(t, err)
	assert.Nil(t, samples)
	assert.Nil(t, m.Registry())
}
