package stoppable_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/stoppable"
)

// newPool builds a Pool logging into a test hook and closes it on cleanup.
func newPool(t *testing.T, opts ...stoppable.Option) (*stoppable.Pool, *logtest.Hook) {
	t.Helper()
	logger, hook := newNullLogger()
	p, err := stoppable.New(
		context.Background(),
		append([]stoppable.Option{stoppable.WithLogger(logger)}, opts...)...,
	)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, hook
}

func newNullLogger() (*logrus.Logger, *logtest.Hook) { return logtest.NewNullLogger() }

// observeWithin runs Observe and fails the test if it does not return within d.
func observeWithin(t *testing.T, p *stoppable.Pool, d time.Duration) error {
	t.Helper()
	ch := make(chan error, 1)
	go func() { ch <- p.Observe(context.Background()) }()
	select {
	case err := <-ch:
		return err
	case <-time.After(d):
		t.Fatalf("Observe did not return within %s", d)
		return nil
	}
}

// requireBlocked fails the test if ch delivers within d.
func requireBlocked(t *testing.T, ch <-chan error, d time.Duration, msg string) {
	t.Helper()
	select {
	case err := <-ch:
		t.Fatalf("%s: returned early with %v", msg, err)
	case <-time.After(d):
	}
}

// loopUntilStopped spins like a never-ending task, yielding to the pool's cancellation only.
func loopUntilStopped(started chan struct{}) stoppable.Task {
	return func(ctx context.Context) error {
		if started != nil {
			close(started)
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				time.Sleep(time.Millisecond)
			}
		}
	}
}
