package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("stock_digest").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("stock_digest").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("stock_digest", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("stock_digest", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("stock_digest")))
}

func TestRecordDigest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordDigest(3, 1250.5)
	require.Equal(t, 3.0, testutil.ToFloat64(m.lowStock))
	require.Equal(t, 1250.5, testutil.ToFloat64(m.stockValue))
}

func TestNilMetricsTracker(t *testing.T) {
	var m *Metrics
	err := errors.New("kept")
	require.ErrorIs(t, m.Track("x").End(err), err)
	m.RecordDigest(1, 1)
}
