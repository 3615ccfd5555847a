package stoppable

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStopSignal_SetIsIdempotent(t *testing.T) {
	var cancels atomic.Int32
	s := stopSignal{cancel: func(cause error) {
		cancels.Add(1)
		require.ErrorIs(t, cause, ErrStopped)
	}}

	require.False(t, s.isStopped())
	require.True(t, s.set())
	require.True(t, s.isStopped())
	require.False(t, s.set())
	require.True(t, s.isStopped())
	require.EqualValues(t, 1, cancels.Load())
}

func TestStopSignal_ConcurrentSetExactlyOneTransition(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	s := stopSignal{cancel: cancel}

	var transitions atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.set() {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, transitions.Load())
	require.ErrorIs(t, context.Cause(ctx), ErrStopped)
}

func TestErrorSlot_FirstWriterWins(t *testing.T) {
	var s errorSlot

	require.Nil(t, s.take())
	require.False(t, s.trySet(nil), "nil must never populate the slot")
	require.Nil(t, s.take())

	first := errors.New("first")
	require.True(t, s.trySet(first))
	require.False(t, s.trySet(errors.New("second")))

	require.Same(t, first, s.take())
	require.Same(t, first, s.take(), "take must not clear the slot")
	require.False(t, s.trySet(errors.New("third")))
}

func TestErrorSlot_ConcurrentTrySet(t *testing.T) {
	var s errorSlot

	const n = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if s.trySet(fmt.Errorf("failure %d", i)) {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	require.Error(t, s.take())
}
