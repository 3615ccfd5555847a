package stoppable

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ygrebnov/stoppable/pool"
)

// State is the lifecycle stage of a Pool.
type State int

const (
	// StateRunning: the stop signal is clear; spawned tasks run.
	StateRunning State = iota
	// StateStopping: a task failed or the pool was stopped; tasks are draining.
	StateStopping
	// StateDrained: stopped and every spawned task has finished or been skipped.
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// Pool runs tasks on an underlying worker pool and stops on the first failure.
//
// The first task error (or panic) is recorded and raises the stop signal:
// tasks that have not started yet are skipped, running tasks see their
// context canceled and run to completion. Observe reports the recorded
// failure, or nil once every spawned task has finished.
//
// Methods are safe for concurrent use. Observe supports one waiter at a time.
// A stopped Pool cannot be restarted; build a new one.
type Pool struct {
	// noCopy prevents accidental copying of the handle.
	//go:nocopy
	nc noCopy

	cfg  *config
	exec pool.Pool
	log  logrus.FieldLogger
	inst instruments

	// ctx is handed to tasks; canceled when the stop signal is raised
	ctx    context.Context
	signal stopSignal
	slot   errorSlot

	// spawned tasks that have neither finished nor been skipped
	outstanding atomic.Int64

	// spawn order, used for error tagging
	seq atomic.Uint64

	// wake holds at most one pending notification for Observe
	wake chan struct{}

	lc *lifecycleCoordinator
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New builds a Pool and its underlying worker pool.
// Without pool options it runs a fixed pool of runtime.NumCPU() workers.
// It fails with ErrInvalidConfig on invalid options and with the
// underlying pool's error if that cannot be built.
// Cancellation of ctx stops the pool like Stop.
func New(ctx context.Context, opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	exec, err := newExecutor(&cfg)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	p := &Pool{
		cfg:  &cfg,
		exec: exec,
		log:  cfg.Logger.WithField("component", Namespace),
		inst: newInstruments(cfg.Metrics),
		wake: make(chan struct{}, 1),
	}

	var cancel context.CancelCauseFunc
	p.ctx, cancel = context.WithCancelCause(ctx)
	p.signal.cancel = cancel

	detach := context.AfterFunc(ctx, func() {
		if p.signal.set() {
			p.log.WithField("reason", context.Cause(ctx)).Info("parent context done, pool stopped")
		}
	})

	p.lc = newLifecycleCoordinator(p.Stop, exec.Close, detach, func() { cancel(ErrStopped) })
	return p, nil
}

// Spawn submits task for execution. It never blocks and is accepted even
// after the pool stopped, in which case the task is skipped.
// It fails with ErrInvalidTask for a nil task and with pool.ErrClosed after Close.
func (p *Pool) Spawn(task Task) error { return p.spawn(nil, task) }

// SpawnWithID is Spawn with a caller-chosen ID reported by ExtractTaskID
// when error tagging is enabled.
func (p *Pool) SpawnWithID(id any, task Task) error { return p.spawn(id, task) }

func (p *Pool) spawn(id any, task Task) error {
	if task == nil {
		return ErrInvalidTask
	}

	st := &spawnedTask{
		p:     p,
		task:  task,
		id:    id,
		index: int(p.seq.Add(1) - 1),
	}

	// count before submitting so Observe never sees a transient zero
	p.outstanding.Add(1)
	p.inst.outstanding.Add(1)

	if err := p.exec.Submit(st.run); err != nil {
		p.finish()
		return err
	}

	p.inst.spawned.Add(1)
	return nil
}

// Stop raises the stop signal without recording a failure.
// Tasks not yet started are skipped; Observe returns nil once they drain,
// unless a task failed on its own. Stop is idempotent and never blocks.
func (p *Pool) Stop() {
	if p.signal.set() {
		p.log.Info("pool stopped by caller")
	}
}

// Abort records reason as the pool failure (unless a failure was already
// recorded) and stops the pool, so Observe returns reason right away.
// A nil reason is replaced by ErrStopped.
func (p *Pool) Abort(reason error) {
	if reason == nil {
		reason = ErrStopped
	}
	first := p.slot.trySet(reason)
	p.signal.set()
	p.notify()
	if first {
		p.log.WithField("reason", reason).Info("pool aborted by caller")
	}
}

// Observe waits until the first failure is recorded, returning it, or until
// every spawned task has finished or been skipped, returning nil.
// It returns ctx.Err() if ctx is done first.
// Call it after spawning; tasks spawned later may not be waited for.
func (p *Pool) Observe(ctx context.Context) error {
	for {
		if err := p.slot.take(); err != nil {
			return err
		}
		if p.outstanding.Load() == 0 {
			// a failing task fills the slot before it is counted out
			return p.slot.take()
		}

		select {
		case <-p.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// State reports the lifecycle stage of the pool.
func (p *Pool) State() State {
	if !p.signal.isStopped() {
		return StateRunning
	}
	if p.outstanding.Load() > 0 {
		return StateStopping
	}
	return StateDrained
}

// Outstanding returns the number of spawned tasks that have not finished or been skipped.
func (p *Pool) Outstanding() int64 { return p.outstanding.Load() }

// Close stops the pool, then closes the underlying pool and waits for its
// workers to exit. Queued tasks are skipped; running tasks are waited for,
// so a task ignoring its context keeps Close blocked.
// Close is idempotent and safe for concurrent use.
func (p *Pool) Close() { p.lc.Close() }

// fail records err as a failure: slot first, then signal, then wake the observer.
func (p *Pool) fail(err error) {
	p.inst.failed.Add(1)

	first := p.slot.trySet(err)
	p.signal.set()
	p.notify()

	entry := p.log.WithError(err)
	if idx, ok := ExtractTaskIndex(err); ok {
		entry = entry.WithField("task_index", idx)
	}
	if first {
		entry.Warn("task failed, stopping pool")
		return
	}
	entry.Debug("task failed after an earlier failure, dropping error")
}

// finish counts a spawned task out and wakes the observer when none remain.
func (p *Pool) finish() {
	p.inst.outstanding.Add(-1)
	if p.outstanding.Add(-1) == 0 {
		p.notify()
	}
}

func (p *Pool) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
		// a wake-up is already pending
	}
}

// isStopAcknowledgment reports whether err only echoes the cancellation of
// the task context, which is not a failure of its own.
func (p *Pool) isStopAcknowledgment(err error) bool {
	if p.ctx.Err() == nil {
		return false
	}
	return errors.Is(err, p.ctx.Err()) || errors.Is(err, context.Cause(p.ctx))
}
