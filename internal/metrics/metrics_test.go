package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Delivered("students", 3)
	m.Delivered("students", 5)
	m.Wrote("students", "add", time.Now(), nil)
	m.Wrote("students", "add", time.Now(), errors.New("boom"))
	m.SetStale("teachers", true)

	if got := testutil.ToFloat64(m.deliveries.WithLabelValues("students")); got != 2 {
		t.Errorf("deliveries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.records.WithLabelValues("students")); got != 5 {
		t.Errorf("records gauge = %v, want 5 (last delivery)", got)
	}
	if got := testutil.ToFloat64(m.writeErrors.WithLabelValues("students", "add")); got != 1 {
		t.Errorf("write errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.staleMirrors.WithLabelValues("teachers")); got != 1 {
		t.Errorf("stale gauge = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Delivered("students", 1)
	m.DecodeFailed("students")
	m.Wrote("students", "add", time.Now(), nil)
	m.SetStale("students", true)
}
