package stoppable

import "github.com/ygrebnov/stoppable/metrics"

// Instrument names recorded through the configured metrics.Provider.
const (
	MetricTasksSpawned     = "tasks_spawned_total"
	MetricTasksCompleted   = "tasks_completed_total"
	MetricTasksFailed      = "tasks_failed_total"
	MetricTasksPanicked    = "tasks_panicked_total"
	MetricTasksSkipped     = "tasks_skipped_total"
	MetricTasksOutstanding = "tasks_outstanding"
	MetricTaskDuration     = "task_duration_seconds"
)

type instruments struct {
	spawned     metrics.Counter
	completed   metrics.Counter
	failed      metrics.Counter
	panicked    metrics.Counter
	skipped     metrics.Counter
	outstanding metrics.UpDownCounter
	duration    metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		spawned: p.Counter(MetricTasksSpawned,
			metrics.WithDescription("Tasks accepted by Spawn."), metrics.WithUnit("1")),
		completed: p.Counter(MetricTasksCompleted,
			metrics.WithDescription("Tasks that ran and succeeded."), metrics.WithUnit("1")),
		failed: p.Counter(MetricTasksFailed,
			metrics.WithDescription("Tasks that returned an error or panicked."), metrics.WithUnit("1")),
		panicked: p.Counter(MetricTasksPanicked,
			metrics.WithDescription("Tasks that panicked."), metrics.WithUnit("1")),
		skipped: p.Counter(MetricTasksSkipped,
			metrics.WithDescription("Tasks skipped because the pool was stopping."), metrics.WithUnit("1")),
		outstanding: p.UpDownCounter(MetricTasksOutstanding,
			metrics.WithDescription("Spawned tasks that have not finished or been skipped yet."), metrics.WithUnit("1")),
		duration: p.Histogram(MetricTaskDuration,
			metrics.WithDescription("Task execution time."), metrics.WithUnit("seconds")),
	}
}
