package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/pagekeeper/pagekeeper/internal/covers"
	"github.com/pagekeeper/pagekeeper/internal/database/catalog"
)

// FetchCoverTask downloads a single book's cover image to local storage.
type FetchCoverTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for cover fetch tasks.
func (t FetchCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "fetch_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// FetchCoverProcessor creates a processor function for FetchCoverTask.
func FetchCoverProcessor(fetcher *covers.Fetcher, store *catalog.Repository) backlite.QueueProcessor[FetchCoverTask] {
	return func(ctx context.Context, task FetchCoverTask) error {
		if fetcher == nil {
			return fmt.Errorf("cover fetcher not configured")
		}

		book, err := store.GetBookByID(task.BookID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				// Book was deleted after the task was queued
				log.Printf("[TASK] Skipping cover fetch for missing book %d", task.BookID)
				return nil
			}
			return fmt.Errorf("load book %d: %w", task.BookID, err)
		}

		if book.ImageURL == "" {
			log.Printf("[TASK] Book %d (%s) has no cover URL", book.ID, book.Title)
			return nil
		}

		localPath, err := fetcher.Fetch(ctx, book.ID, book.ImageURL)
		if err != nil {
			return fmt.Errorf("fetch cover for book %d: %w", book.ID, err)
		}

		if err := store.SetLocalImage(book.ID, localPath); err != nil {
			return fmt.Errorf("record local cover for book %d: %w", book.ID, err)
		}

		log.Printf("[TASK] Cached cover for book %d (%s)", book.ID, book.Title)
		return nil
	}
}

// NewFetchCoverQueue creates a backlite queue for cover fetch tasks.
func NewFetchCoverQueue(fetcher *covers.Fetcher, store *catalog.Repository) backlite.Queue {
	return backlite.NewQueue(FetchCoverProcessor(fetcher, store))
}
