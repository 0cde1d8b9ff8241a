package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAggregatesFlows(t *testing.T) {
	m := NewMetrics()
	m.RecordFlow("spoke-scoring", "ok", 100*time.Millisecond)
	m.RecordFlow("spoke-scoring", "UPSTREAM_UNAVAILABLE", 300*time.Millisecond)
	m.RecordFlow("lead-scoring", "ok", 50*time.Millisecond)
	m.RecordRequest("/spokes/:id/score", "POST", 200, time.Millisecond)
	m.RecordError("/spokes/s1/score", "POST", "UPSTREAM_UNAVAILABLE")

	snap := m.Snapshot()
	require.Len(t, snap.Flows, 2)
	assert.Equal(t, "lead-scoring", snap.Flows[0].Flow)

	spoke := snap.Flows[1]
	assert.Equal(t, int64(2), spoke.Total)
	assert.Equal(t, int64(1), spoke.Outcomes["ok"])
	assert.Equal(t, (200 * time.Millisecond).String(), spoke.AverageLatency)

	assert.Equal(t, int64(1), snap.Requests["/spokes/:id/score|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/spokes/s1/score|POST|UPSTREAM_UNAVAILABLE"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordFlow("x", "ok", time.Second)
	m.RecordRequest("/", "GET", 200, time.Second)
	assert.Empty(t, m.Snapshot().Flows)
}
