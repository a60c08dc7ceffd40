// Package gamification implements the badge award engine and the derived
// user level.
//
// Award checks are idempotent: the (user, badge) uniqueness in the badge
// store guarantees that re-running a check with no new activity awards
// nothing.
package gamification

import (
	"fmt"
	"log"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// ReadingCounter supplies the completed-books counter.
type ReadingCounter interface {
	CountCompleted(userID uint) (int64, error)
}

// ForumCounter supplies the forum activity counters.
type ForumCounter interface {
	CountTopicsByAuthor(userID uint) (int64, error)
	CountRepliesByAuthor(userID uint) (int64, error)
}

// EventCounter supplies the attended-events counter.
type EventCounter interface {
	CountAttended(userID uint) (int64, error)
}

// BadgeStore is the badge catalog plus the (user, badge) award join.
type BadgeStore interface {
	ListMeasurable() ([]entities.Badge, error)
	GetBadge(id uint) (*entities.Badge, error)
	HeldBadgeIDs(userID uint) (map[uint]bool, error)
	Award(userID, badgeID uint) (bool, error)
	Revoke(userID, badgeID uint) error
	CountByUser(userID uint) (int64, error)
}

// Notifier creates user-facing notifications.
type Notifier interface {
	Create(userID uint, title, message, link string) (*entities.Notification, error)
}

// BadgeProgress reports how far a user is from an unearned badge.
type BadgeProgress struct {
	Badge       entities.Badge `json:"badge"`
	Current     int64          `json:"current"`
	Requirement int            `json:"requirement"`
}

// Service computes activity counters, awards badges and derives levels.
type Service struct {
	reading  ReadingCounter
	forum    ForumCounter
	events   EventCounter
	badges   BadgeStore
	notifier Notifier
}

func NewService(reading ReadingCounter, forum ForumCounter, events EventCounter, badges BadgeStore, notifier Notifier) *Service {
	return &Service{
		reading:  reading,
		forum:    forum,
		events:   events,
		badges:   badges,
		notifier: notifier,
	}
}

// ActivityCounters loads all counters for a user.
func (s *Service) ActivityCounters(userID uint) (Counters, error) {
	var c Counters
	var err error

	if c.BooksCompleted, err = s.reading.CountCompleted(userID); err != nil {
		return c, fmt.Errorf("count completed books: %w", err)
	}
	if c.TopicsCreated, err = s.forum.CountTopicsByAuthor(userID); err != nil {
		return c, fmt.Errorf("count topics: %w", err)
	}
	if c.RepliesPosted, err = s.forum.CountRepliesByAuthor(userID); err != nil {
		return c, fmt.Errorf("count replies: %w", err)
	}
	if c.EventsAttended, err = s.events.CountAttended(userID); err != nil {
		return c, fmt.Errorf("count attended events: %w", err)
	}
	if c.Badges, err = s.badges.CountByUser(userID); err != nil {
		return c, fmt.Errorf("count badges: %w", err)
	}
	return c, nil
}

func (c Counters) forMetric(metric entities.BadgeMetric) int64 {
	switch metric {
	case entities.MetricBooksCompleted:
		return c.BooksCompleted
	case entities.MetricTopicsCreated:
		return c.TopicsCreated
	case entities.MetricRepliesPosted:
		return c.RepliesPosted
	case entities.MetricEventsAttended:
		return c.EventsAttended
	}
	return 0
}

// CheckAndAward measures every non-special badge against the user's
// counters and awards the newly earned ones, emitting a notification per
// award. Returns the badges awarded in this run.
func (s *Service) CheckAndAward(userID uint) ([]entities.Badge, error) {
	counters, err := s.ActivityCounters(userID)
	if err != nil {
		return nil, err
	}

	measurable, err := s.badges.ListMeasurable()
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	held, err := s.badges.HeldBadgeIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("load held badges: %w", err)
	}

	var awarded []entities.Badge
	for _, badge := range measurable {
		if held[badge.ID] || badge.Requirement <= 0 {
			continue
		}
		if counters.forMetric(badge.Metric) < int64(badge.Requirement) {
			continue
		}

		created, err := s.badges.Award(userID, badge.ID)
		if err != nil {
			return awarded, fmt.Errorf("award badge %s: %w", badge.Name, err)
		}
		if !created {
			continue
		}

		awarded = append(awarded, badge)
		s.notifyBadge(userID, badge, "You earned a new badge")
	}
	return awarded, nil
}

// Grant manually awards a badge, admin-only at the HTTP layer. Unlike
// CheckAndAward it works for special badges too.
func (s *Service) Grant(userID, badgeID uint) (*entities.Badge, error) {
	badge, err := s.badges.GetBadge(badgeID)
	if err != nil {
		return nil, err
	}
	created, err := s.badges.Award(userID, badgeID)
	if err != nil {
		return nil, err
	}
	if created {
		s.notifyBadge(userID, *badge, "You were granted a badge")
	}
	return badge, nil
}

// Revoke removes a manually granted badge and tells the user.
func (s *Service) Revoke(userID, badgeID uint) error {
	badge, err := s.badges.GetBadge(badgeID)
	if err != nil {
		return err
	}
	if err := s.badges.Revoke(userID, badgeID); err != nil {
		return err
	}
	if _, err := s.notifier.Create(userID, "Badge revoked",
		fmt.Sprintf("Your badge %q was revoked by a moderator", badge.Name), "/badges"); err != nil {
		log.Printf("gamification: failed to notify user %d about revoked badge: %v", userID, err)
	}
	return nil
}

// Progress reports the unearned non-special badges with the user's current
// counter next to each requirement.
func (s *Service) Progress(userID uint) ([]BadgeProgress, error) {
	counters, err := s.ActivityCounters(userID)
	if err != nil {
		return nil, err
	}
	measurable, err := s.badges.ListMeasurable()
	if err != nil {
		return nil, err
	}
	held, err := s.badges.HeldBadgeIDs(userID)
	if err != nil {
		return nil, err
	}

	progress := make([]BadgeProgress, 0)
	for _, badge := range measurable {
		if held[badge.ID] {
			continue
		}
		progress = append(progress, BadgeProgress{
			Badge:       badge,
			Current:     counters.forMetric(badge.Metric),
			Requirement: badge.Requirement,
		})
	}
	return progress, nil
}

// LevelForUser derives the user's current level from live counters.
func (s *Service) LevelForUser(userID uint) (Level, Counters, error) {
	counters, err := s.ActivityCounters(userID)
	if err != nil {
		return Level{}, counters, err
	}
	return LevelFor(counters), counters, nil
}

// Notification failures never block an award.
func (s *Service) notifyBadge(userID uint, badge entities.Badge, title string) {
	message := fmt.Sprintf("%s: %s", badge.Name, badge.Description)
	if _, err := s.notifier.Create(userID, title, message, "/badges"); err != nil {
		log.Printf("gamification: failed to notify user %d about badge %s: %v", userID, badge.Name, err)
	}
}
