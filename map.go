package stoppable

import "context"

// Map applies fn to every item on a new Pool and returns the results in input order.
// On the first failure it returns nil results and that failure; tasks not yet
// started are skipped.
func Map[T, R any](
	ctx context.Context,
	items []T,
	fn func(context.Context, T) (R, error),
	opts ...Option,
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	// each task owns exactly one slot of results
	results := make([]R, len(items))
	tasks := make([]Task, 0, len(items))
	for i := range items {
		tasks = append(tasks, func(c context.Context) error {
			r, err := fn(c, items[i])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := RunAll(ctx, tasks, opts...); err != nil {
		return nil, err
	}
	return results, nil
}
