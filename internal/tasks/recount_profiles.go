package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/pagekeeper/pagekeeper/internal/database/engagement"
)

// RecountProfilesTask recomputes every profile's reviews_written and
// total_pages_read counters from the underlying rows.
type RecountProfilesTask struct{}

// Config returns the queue configuration for profile recount tasks.
func (t RecountProfilesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recount_profiles",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RecountProfilesProcessor creates a processor function for RecountProfilesTask.
func RecountProfilesProcessor(store *engagement.Repository) backlite.QueueProcessor[RecountProfilesTask] {
	return func(ctx context.Context, task RecountProfilesTask) error {
		affected, err := store.RecountProfiles()
		if err != nil {
			return fmt.Errorf("recount profiles: %w", err)
		}

		log.Printf("[TASK] Recounted %d profiles", affected)
		return nil
	}
}

// NewRecountProfilesQueue creates a backlite queue for profile recount tasks.
func NewRecountProfilesQueue(store *engagement.Repository) backlite.Queue {
	return backlite.NewQueue(RecountProfilesProcessor(store))
}
