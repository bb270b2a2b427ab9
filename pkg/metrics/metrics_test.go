package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.FlushDone(3)
	m.JobPanicked()
	m.EffectRun("plain")
	m.HostOp("insert")
	m.Moved()
	m.Rendered()
	m.RenderFailed()
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"))

	m.FlushDone(3)
	m.FlushDone(2)
	m.JobPanicked()
	m.HostOp("insert")
	m.HostOp("insert")
	m.HostOp("remove")
	m.EffectRun("computed")
	m.Moved()
	m.Rendered()
	m.RenderFailed()

	if got := testutil.ToFloat64(m.flushes); got != 2 {
		t.Errorf("flushes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.jobsRun); got != 5 {
		t.Errorf("jobsRun = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.jobPanics); got != 1 {
		t.Errorf("jobPanics = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.hostOps.WithLabelValues("insert")); got != 2 {
		t.Errorf("hostOps[insert] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.effectRuns.WithLabelValues("computed")); got != 1 {
		t.Errorf("effectRuns[computed] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.moves); got != 1 {
		t.Errorf("moves = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_scheduler_flushes_total" {
			found = true
		}
	}
	if !found {
		t.Error("namespaced flush counter not registered")
	}
}
