package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRun(OutcomePartial, 3.2)
	m.ObserveRun(OutcomePartial, 1.1)
	m.ObserveRun(OutcomeRejected, 0)
	m.ImageRequest(true)
	m.ImageRequest(false)
	m.ImageRequest(false)
	m.Export("archive", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues(OutcomePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.imageRequests.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("archive", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(OutcomeSuccess, 1)
		m.ImageRequest(true)
		m.Export("slide", false)
	})
}
