package stoppable

import "context"

// RunAll runs tasks on a new Pool configured by opts and owns its lifecycle:
// New, Spawn every task, Observe, Close.
// It returns the first failure, or nil when every task succeeded.
// ctx bounds both the pool (cancellation stops it) and the wait; once ctx is
// done, a run without a recorded failure reports ctx.Err() instead of nil.
func RunAll(ctx context.Context, tasks []Task, opts ...Option) error {
	if len(tasks) == 0 {
		return nil
	}

	p, err := New(ctx, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	for _, t := range tasks {
		if err = p.Spawn(t); err != nil {
			p.Abort(err)
			break
		}
	}

	if err = p.Observe(ctx); err != nil {
		return err
	}
	return ctx.Err()
}
