package scheduler

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeeper/pagekeeper/internal/config"
)

// Schedules far enough out that no job fires during a test run.
func testSchedulerConfigs() (config.Covers, config.Maintenance) {
	var covers config.Covers
	covers.SyncEnabled = true
	covers.SyncSchedule = "0 0 1 1 *"

	var maint config.Maintenance
	maint.RecountEnabled = true
	maint.RecountSchedule = "30 0 1 1 *"

	return covers, maint
}

func TestMaintenanceSchedulerStart(t *testing.T) {
	t.Run("schedules enabled jobs", func(t *testing.T) {
		covers, maint := testSchedulerConfigs()
		s := NewMaintenanceScheduler(nil, covers, maint)

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()

		assert.True(t, s.IsRunning())
		assert.Len(t, s.NextRuns(), 2)
	})

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		covers, maint := testSchedulerConfigs()
		covers.SyncSchedule = "not a cron spec"
		s := NewMaintenanceScheduler(nil, covers, maint)

		assert.Error(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("does nothing with no jobs enabled", func(t *testing.T) {
		var covers config.Covers
		var maint config.Maintenance
		s := NewMaintenanceScheduler(nil, covers, maint)

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.NextRuns())
	})
}

func TestMaintenanceSchedulerStop(t *testing.T) {
	t.Run("releases the context watcher", func(t *testing.T) {
		covers, maint := testSchedulerConfigs()
		s := NewMaintenanceScheduler(nil, covers, maint)

		before := runtime.NumGoroutine()
		require.NoError(t, s.Start(context.Background()))

		s.Stop()
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.cancelFunc)

		// Both the cron loop and the watcher goroutine must exit even
		// though the parent context never cancels.
		deadline := time.Now().Add(time.Second)
		for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		assert.LessOrEqual(t, runtime.NumGoroutine(), before)

		// Idempotent
		s.Stop()
	})

	t.Run("stops when the parent context is cancelled", func(t *testing.T) {
		covers, maint := testSchedulerConfigs()
		s := NewMaintenanceScheduler(nil, covers, maint)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, s.Start(ctx))
		require.True(t, s.IsRunning())

		cancel()
		assert.Eventually(t, func() bool {
			return !s.IsRunning()
		}, time.Second, 10*time.Millisecond)
	})
}
