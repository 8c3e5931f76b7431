package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReconciler struct {
	mu   sync.Mutex
	days []time.Time
}

func (r *recordingReconciler) ReconcileDay(_ context.Context, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days = append(r.days, day)
	return 0, nil
}

func (r *recordingReconciler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.days)
}

func testScheduler(rec *recordingReconciler, hour int) *Scheduler {
	return New(rec, slog.New(slog.DiscardHandler), Config{Hour: hour, Location: time.UTC})
}

func TestStartStop(t *testing.T) {
	s := testScheduler(&recordingReconciler{}, 23)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "double start")

	require.NoError(t, s.Stop())
	assert.Error(t, s.Stop(), "double stop")
}

func TestUntilNextRun(t *testing.T) {
	s := testScheduler(&recordingReconciler{}, 23)

	t.Run("later today", func(t *testing.T) {
		s.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
		assert.Equal(t, 13*time.Hour, s.untilNextRun())
	})

	t.Run("already past, tomorrow", func(t *testing.T) {
		s.now = func() time.Time { return time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC) }
		assert.Equal(t, 23*time.Hour+30*time.Minute, s.untilNextRun())
	})

	t.Run("exactly at the hour, tomorrow", func(t *testing.T) {
		s.now = func() time.Time { return time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC) }
		assert.Equal(t, 24*time.Hour, s.untilNextRun())
	})
}

func TestSweepCallsReconciler(t *testing.T) {
	rec := &recordingReconciler{}
	s := testScheduler(rec, 23)
	s.now = func() time.Time { return time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC) }

	s.sweep(context.Background())
	require.Equal(t, 1, rec.count())
	assert.Equal(t, 2026, rec.days[0].Year())
	assert.Equal(t, time.March, rec.days[0].Month())
	assert.Equal(t, 2, rec.days[0].Day())
}
