package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceReturnsTaskError(t *testing.T) {
	boom := errors.New("boom")
	w := NewLoopWorker("test", time.Hour, func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, w.RunOnce(context.Background()), boom)
}

func TestRunOnceRecoversPanic(t *testing.T) {
	w := NewLoopWorker("test", time.Hour, func(ctx context.Context) error { panic("kaboom") })

	err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: kaboom")
}

func TestRunOnceAppliesTimeout(t *testing.T) {
	w := NewLoopWorker("test", time.Hour, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	assert.NoError(t, w.RunOnce(context.Background()))
}

func TestLoopSurvivesErrorsAndPanics(t *testing.T) {
	var calls int32
	s := NewScheduler()
	s.Register("flaky", 5*time.Millisecond, func(ctx context.Context) error {
		n := atomic.AddInt32(&calls, 1)
		switch n % 3 {
		case 1:
			return errors.New("upstream down")
		case 2:
			panic("bad payload")
		}
		return nil
	})

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 6
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.IsRunning())
}

func TestLoopsAreIndependent(t *testing.T) {
	var fast int32
	release := make(chan struct{})

	s := NewScheduler()
	s.Register("slow", time.Millisecond, func(ctx context.Context) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	s.Register("fast", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&fast, 1)
		return nil
	})

	s.Start()
	defer func() {
		close(release)
		s.Stop()
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fast) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoopSleepsBetweenIterations(t *testing.T) {
	var calls int32
	s := NewScheduler()
	s.Register("hourly", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	s.Start()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	s.Stop()
}

func TestStopEndsLoops(t *testing.T) {
	var calls int32
	s := NewScheduler()
	s.Register("a", time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	s.Register("b", time.Millisecond, func(ctx context.Context) error { return nil })
	assert.Equal(t, []string{"a", "b"}, s.Names())

	s.Start()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) > 0
	}, time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())

	after := atomic.LoadInt32(&calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls))

	// повторный Stop безопасен
	s.Stop()
}

func TestRegisterAfterStartRuns(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var calls int32
	s.Register("late", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"late"}, s.Names())
}

func TestRegisterAfterStopIsIgnored(t *testing.T) {
	s := NewScheduler()
	s.Start()
	s.Stop()

	var calls int32
	s.Register("late", time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Empty(t, s.Names())
}
