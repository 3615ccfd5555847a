package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_RecordsIntoRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("stoppable", reg)

	p.Counter("tasks_failed_total", WithDescription("Failed tasks.")).Add(2)
	p.Counter("tasks_failed_total").Add(1)
	p.UpDownCounter("tasks_outstanding").Add(4)
	p.UpDownCounter("tasks_outstanding").Add(-1)
	p.Histogram("task_duration_seconds").Record(0.5)

	require.Equal(t, 3.0, testutil.ToFloat64(p.counters["tasks_failed_total"]))
	require.Equal(t, 3.0, testutil.ToFloat64(p.gauges["tasks_outstanding"]))
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestPrometheusProvider_NegativeCounterAddIgnored(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("stoppable", reg)

	require.NotPanics(t, func() { p.Counter("tasks_spawned_total").Add(-1) })
	require.Equal(t, 0.0, testutil.ToFloat64(p.counters["tasks_spawned_total"]))
}

func TestPrometheusProvider_SharedRegistryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPrometheusProvider("stoppable", reg)
	b := NewPrometheusProvider("stoppable", reg)

	a.Counter("tasks_completed_total").Add(1)
	b.Counter("tasks_completed_total").Add(1)

	require.Equal(t, 2.0, testutil.ToFloat64(a.counters["tasks_completed_total"]))
}

func TestPrometheusProvider_ConflictingRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider("stoppable", reg)

	p.Counter("tasks_total", WithDescription("Tasks."))
	require.Panics(t, func() { p.UpDownCounter("tasks_total") })
}
