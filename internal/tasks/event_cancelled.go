package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AttendeeList resolves the active attendees of an event.
type AttendeeList interface {
	GoingUserIDs(eventID uint) ([]uint, error)
}

// EventCancelledTask notifies every active attendee after an event is
// cancelled. Enqueued after the cancellation commits.
type EventCancelledTask struct {
	EventID uint   `json:"event_id"`
	Title   string `json:"title"`
}

// Config returns the queue configuration for cancellation fan-out.
func (t EventCancelledTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "event_cancelled",
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

// EventCancelledProcessor creates a processor function for EventCancelledTask.
func EventCancelledProcessor(attendees AttendeeList, notifier BatchNotifier) backlite.QueueProcessor[EventCancelledTask] {
	return func(ctx context.Context, task EventCancelledTask) error {
		userIDs, err := attendees.GoingUserIDs(task.EventID)
		if err != nil {
			return fmt.Errorf("load attendees for event %d: %w", task.EventID, err)
		}
		if len(userIDs) == 0 {
			return nil
		}

		created, failed := notifier.CreateBatch(
			userIDs,
			"Event cancelled",
			fmt.Sprintf("%q has been cancelled", task.Title),
			fmt.Sprintf("/events/%d", task.EventID),
		)
		log.Printf("[TASK] Event %d cancelled: notified %d attendees (%d failed)", task.EventID, created, failed)
		return nil
	}
}

// NewEventCancelledQueue creates a backlite queue for cancellation fan-out.
func NewEventCancelledQueue(attendees AttendeeList, notifier BatchNotifier) backlite.Queue {
	return backlite.NewQueue(EventCancelledProcessor(attendees, notifier))
}
