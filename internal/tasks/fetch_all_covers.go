package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/pagekeeper/pagekeeper/internal/database/catalog"
)

// FetchAllCoversTask fans out one FetchCoverTask per book that has a remote
// cover URL but no local copy yet.
type FetchAllCoversTask struct{}

// Config returns the queue configuration for bulk cover sync tasks.
func (t FetchAllCoversTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "fetch_all_covers",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// FetchAllCoversProcessor creates a processor function for FetchAllCoversTask.
func FetchAllCoversProcessor(store *catalog.Repository, client *Client) backlite.QueueProcessor[FetchAllCoversTask] {
	return func(ctx context.Context, task FetchAllCoversTask) error {
		books, err := store.BooksMissingLocalImage()
		if err != nil {
			return fmt.Errorf("list books missing covers: %w", err)
		}

		if len(books) == 0 {
			log.Println("[TASK] All covers are already cached")
			return nil
		}

		for _, book := range books {
			if _, err := client.Add(FetchCoverTask{BookID: book.ID}).Save(); err != nil {
				return fmt.Errorf("enqueue cover fetch for book %d: %w", book.ID, err)
			}
		}

		log.Printf("[TASK] Queued %d cover fetches", len(books))
		return nil
	}
}

// NewFetchAllCoversQueue creates a backlite queue for bulk cover sync tasks.
func NewFetchAllCoversQueue(store *catalog.Repository, client *Client) backlite.Queue {
	return backlite.NewQueue(FetchAllCoversProcessor(store, client))
}
