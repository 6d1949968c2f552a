package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_RunsPeriodically(t *testing.T) {
	s := New()

	var runs atomic.Int32
	require.NoError(t, s.Every("count", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after Stop")
}

func TestEvery_Rejects(t *testing.T) {
	s := New()
	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, s.Every("bad", 0, noop))

	require.NoError(t, s.Every("job", time.Minute, noop))
	assert.Error(t, s.Every("job", time.Minute, noop))
}

func TestRunNow(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	require.NoError(t, s.Every("fails", time.Hour, func(ctx context.Context) error { return boom }))

	assert.ErrorIs(t, s.RunNow("fails"), boom)
	assert.Error(t, s.RunNow("missing"))
}

func TestRecoversPanics(t *testing.T) {
	s := New()

	var runs atomic.Int32
	require.NoError(t, s.Every("panics", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		panic("tick exploded")
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond,
		"a panicking job keeps running on later ticks")
}
