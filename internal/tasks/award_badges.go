package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// BadgeAwarder runs the threshold check for one user.
type BadgeAwarder interface {
	CheckAndAward(userID uint) ([]entities.Badge, error)
}

// AwardBadgesTask re-measures a user's badge thresholds after new
// activity. The check itself is idempotent, so retries are harmless.
type AwardBadgesTask struct {
	UserID uint `json:"user_id"`
}

// Config returns the queue configuration for badge award checks.
func (t AwardBadgesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "award_badges",
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

// AwardBadgesProcessor creates a processor function for AwardBadgesTask.
func AwardBadgesProcessor(awarder BadgeAwarder) backlite.QueueProcessor[AwardBadgesTask] {
	return func(ctx context.Context, task AwardBadgesTask) error {
		awarded, err := awarder.CheckAndAward(task.UserID)
		if err != nil {
			return fmt.Errorf("badge check for user %d: %w", task.UserID, err)
		}
		if len(awarded) > 0 {
			names := make([]string, 0, len(awarded))
			for _, b := range awarded {
				names = append(names, b.Name)
			}
			log.Printf("[TASK] User %d earned badges: %v", task.UserID, names)
		}
		return nil
	}
}

// NewAwardBadgesQueue creates a backlite queue for badge award checks.
func NewAwardBadgesQueue(awarder BadgeAwarder) backlite.Queue {
	return backlite.NewQueue(AwardBadgesProcessor(awarder))
}
