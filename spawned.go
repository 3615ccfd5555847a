package stoppable

import (
	"time"

	"github.com/sirupsen/logrus"
)

// spawnedTask binds a Task to the Pool that spawned it.
// run is what the underlying pool executes.
type spawnedTask struct {
	p     *Pool
	task  Task
	id    any
	index int
}

func (st *spawnedTask) run() {
	p := st.p
	defer p.finish()

	if p.signal.isStopped() {
		p.inst.skipped.Add(1)
		st.logger().Debug("pool is stopping, skipping task")
		return
	}

	returned := false
	defer func() {
		if !returned {
			st.onGoexit()
		}
	}()

	start := time.Now()
	err := execTask(p.ctx, st.task, st.onPanic)
	p.inst.duration.Record(time.Since(start).Seconds())
	returned = true

	switch {
	case err == nil:
		p.inst.completed.Add(1)
	case p.isStopAcknowledgment(err):
		p.inst.completed.Add(1)
		p.signal.set()
		st.logger().WithError(err).Debug("task returned after pool cancellation")
	default:
		if p.cfg.ErrorTagging {
			err = tagError(err, st.id, st.index)
		}
		p.fail(err)
	}
}

func (st *spawnedTask) onPanic(recovered any, stack []byte) error {
	st.p.inst.panicked.Add(1)
	st.logger().
		WithField("panic", recovered).
		WithField("stack", string(stack)).
		Error("task panicked")
	return st.p.cfg.PanicHandler(recovered, stack)
}

// onGoexit records a task that left through runtime.Goexit. Runs before the
// task is counted out, so Observe sees the failure.
func (st *spawnedTask) onGoexit() {
	st.logger().Error("task exited via runtime.Goexit")
	var err error = ErrTaskAborted
	if st.p.cfg.ErrorTagging {
		err = tagError(err, st.id, st.index)
	}
	st.p.fail(err)
}

func (st *spawnedTask) logger() logrus.FieldLogger {
	l := st.p.log.WithField("task_index", st.index)
	if st.id != nil {
		l = l.WithField("task_id", st.id)
	}
	return l
}
