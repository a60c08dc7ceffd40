package http

import (
	"github.com/mikestefanello/backlite"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// This file consolidates the interfaces shared between HTTP controllers.
// Each controller defines its own narrow store interface in its file;
// only genuinely cross-cutting pieces live here.

// TaskEnqueuer enqueues background tasks after a mutation commits.
// Satisfied by *tasks.Client. Controllers treat a nil enqueuer as
// "queue disabled" and skip the fan-out.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// Notifier delivers in-app notifications synchronously, for emits that
// are cheap enough not to need the queue. Satisfied by the
// notifications repository.
type Notifier interface {
	Create(userID uint, title, message, link string) (*entities.Notification, error)
}
