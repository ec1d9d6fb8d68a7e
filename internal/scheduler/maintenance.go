// Package scheduler runs the periodic maintenance jobs: the cover sync sweep
// and the profile counter recount. Jobs are enqueued on the task queue rather
// than executed inline, so the cron goroutine never blocks on slow work.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pagekeeper/pagekeeper/internal/config"
	"github.com/pagekeeper/pagekeeper/internal/tasks"
)

// MaintenanceScheduler manages the recurring cover sync and recount jobs.
type MaintenanceScheduler struct {
	client *tasks.Client
	covers config.Covers
	maint  config.Maintenance

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance.
func NewMaintenanceScheduler(client *tasks.Client, coversCfg config.Covers, maintCfg config.Maintenance) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		client: client,
		covers: coversCfg,
		maint:  maintCfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the enabled jobs and begins the cron loop.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	scheduled := 0

	if s.covers.SyncEnabled {
		if _, err := s.cron.AddFunc(s.covers.SyncSchedule, s.enqueueCoverSync); err != nil {
			return fmt.Errorf("invalid cover sync schedule '%s': %w", s.covers.SyncSchedule, err)
		}
		log.Printf("Maintenance scheduler: cover sync scheduled '%s'", s.covers.SyncSchedule)
		scheduled++
	}

	if s.maint.RecountEnabled {
		if _, err := s.cron.AddFunc(s.maint.RecountSchedule, s.enqueueRecount); err != nil {
			return fmt.Errorf("invalid recount schedule '%s': %w", s.maint.RecountSchedule, err)
		}
		log.Printf("Maintenance scheduler: profile recount scheduled '%s'", s.maint.RecountSchedule)
		scheduled++
	}

	if scheduled == 0 {
		log.Printf("Maintenance scheduler: no jobs enabled")
		return nil
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	// Release the watcher goroutine, which otherwise blocks forever when
	// the parent context never cancels
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Maintenance scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRuns reports the upcoming fire times of all scheduled jobs.
func (s *MaintenanceScheduler) NextRuns() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		next = append(next, entry.Next)
	}
	return next
}

func (s *MaintenanceScheduler) enqueueCoverSync() {
	if _, err := s.client.Add(tasks.FetchAllCoversTask{}).Save(); err != nil {
		log.Printf("Maintenance scheduler: failed to enqueue cover sync: %v", err)
		return
	}
	log.Printf("Maintenance scheduler: cover sync enqueued")
}

func (s *MaintenanceScheduler) enqueueRecount() {
	if _, err := s.client.Add(tasks.RecountProfilesTask{}).Save(); err != nil {
		log.Printf("Maintenance scheduler: failed to enqueue recount: %v", err)
		return
	}
	log.Printf("Maintenance scheduler: profile recount enqueued")
}
