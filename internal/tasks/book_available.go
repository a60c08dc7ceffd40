package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// WaitingList resolves which users asked to be told about a book.
type WaitingList interface {
	WaitingUserIDs(bookID uint) ([]uint, error)
}

// BatchNotifier fans one message out to many users, best effort.
type BatchNotifier interface {
	CreateBatch(userIDs []uint, title, message, link string) (created int, failed int)
}

// BookAvailableTask notifies everyone with a reading list entry for a book
// that just came back on the shelf.
type BookAvailableTask struct {
	BookID uint   `json:"book_id"`
	Title  string `json:"title"`
}

// Config returns the queue configuration for availability broadcasts.
func (t BookAvailableTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "book_available",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BookAvailableProcessor creates a processor function for BookAvailableTask.
func BookAvailableProcessor(waiting WaitingList, notifier BatchNotifier) backlite.QueueProcessor[BookAvailableTask] {
	return func(ctx context.Context, task BookAvailableTask) error {
		userIDs, err := waiting.WaitingUserIDs(task.BookID)
		if err != nil {
			return fmt.Errorf("load waiting list for book %d: %w", task.BookID, err)
		}
		if len(userIDs) == 0 {
			return nil
		}

		created, failed := notifier.CreateBatch(
			userIDs,
			"Book available",
			fmt.Sprintf("%q is back on the shelf", task.Title),
			fmt.Sprintf("/books/%d", task.BookID),
		)
		log.Printf("[TASK] Book %d available: notified %d users (%d failed)", task.BookID, created, failed)
		return nil
	}
}

// NewBookAvailableQueue creates a backlite queue for availability broadcasts.
func NewBookAvailableQueue(waiting WaitingList, notifier BatchNotifier) backlite.Queue {
	return backlite.NewQueue(BookAvailableProcessor(waiting, notifier))
}
