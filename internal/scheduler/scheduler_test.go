package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int32
	s := New(20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("keeps failing")
	}, slog.Default())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopsRunningAfterStop(t *testing.T) {
	var runs atomic.Int32
	s := New(10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, slog.Default())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), after+1, "at most one in-flight run completes after Stop")
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := New(0, func(context.Context) error { return nil }, slog.Default())
	assert.Error(t, s.Start(context.Background()))
}
