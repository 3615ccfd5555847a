package stoppable

import "context"

// ForEach calls fn for every item on a new Pool and stops at the first failure.
// See RunAll for lifecycle and error semantics.
func ForEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error, opts ...Option) error {
	tasks := make([]Task, 0, len(items))
	for i := range items {
		item := items[i]
		tasks = append(tasks, func(c context.Context) error { return fn(c, item) })
	}
	return RunAll(ctx, tasks, opts...)
}
