// Package stoppable runs tasks on a worker pool and stops on the first failure.
//
// A plain worker pool is fire-and-forget: a failing task is invisible to the
// caller and the remaining work keeps running. A stoppable Pool adds:
//   - a stop signal checked by every task before it starts;
//   - a single error slot where the first failure wins;
//   - a fault boundary converting task panics into errors (ErrTaskPanicked),
//     and runtime.Goexit into ErrTaskAborted;
//   - Observe, waiting for the first failure or for all tasks to finish;
//   - Stop and Abort, stopping the pool at any time.
//
// Lifecycle
//
//	p, err := stoppable.New(ctx, stoppable.WithFixedPool(4))
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	for _, t := range tasks {
//		_ = p.Spawn(t)
//	}
//	return p.Observe(ctx)
//
// Cancellation is cooperative: stopping skips tasks that have not started and
// cancels the context of running ones, which are never preempted.
//
// Defaults
//   - Pool: fixed, runtime.NumCPU() workers (WithFixedPool, WithDynamicPool, WithExecutor)
//   - Panics: reported as *PanicError (WithPanicHandler)
//   - Error tagging: disabled (WithErrorTagging)
//   - Logger: logrus.StandardLogger() (WithLogger)
//   - Metrics: discarded (WithMetrics)
//
// RunAll, ForEach and Map wrap the whole lifecycle for a batch of work.
package stoppable
