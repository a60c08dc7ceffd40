// Package events provides database operations for club events, RSVPs and
// event comments.
//
// RSVP runs inside a transaction so the capacity check and the RSVP insert
// cannot interleave with a competing request and overbook the event.
package events

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

var (
	// ErrEventFull is returned when an event's capacity is exhausted.
	ErrEventFull = errors.New("event is full")

	// ErrEventCancelled is returned when acting on a cancelled event.
	ErrEventCancelled = errors.New("event is cancelled")

	// ErrAlreadyGoing is returned on a duplicate active RSVP.
	ErrAlreadyGoing = errors.New("already attending this event")
)

const goingCount = "(SELECT COUNT(*) FROM event_rsvps WHERE event_rsvps.event_id = events.id AND event_rsvps.status = 'GOING') AS going_count"

// Repository handles all event database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateEvent(event *entities.Event) error {
	event.Status = entities.EventStatusScheduled
	return r.db.Create(event).Error
}

func (r *Repository) GetEvent(id uint) (*entities.Event, error) {
	var event entities.Event
	err := r.db.Model(&entities.Event{}).
		Select("events.*, "+goingCount).
		First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns events, upcoming first. When upcoming is true, past
// events are excluded.
func (r *Repository) ListEvents(upcoming bool, limit, offset int) ([]entities.Event, int64, error) {
	var events []entities.Event
	var total int64

	query := r.db.Model(&entities.Event{})
	if upcoming {
		query = query.Where("starts_at >= ?", time.Now())
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Select("events.*, " + goingCount).Order("starts_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&events).Error
	return events, total, err
}

func (r *Repository) UpdateEvent(id uint, fields map[string]any) (*entities.Event, error) {
	delete(fields, "status") // status changes only via CancelEvent

	var event entities.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.Model(&event).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return &event, nil
}

func (r *Repository) DeleteEvent(id uint) error {
	res := r.db.Delete(&entities.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RSVP registers the user as GOING. Fails on cancelled events, duplicate
// active RSVPs and exhausted capacity. A previously cancelled RSVP is
// reactivated instead of inserting a second row.
func (r *Repository) RSVP(eventID, userID uint) (*entities.EventRSVP, error) {
	var rsvp *entities.EventRSVP

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var event entities.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}
		if event.Status == entities.EventStatusCancelled {
			return ErrEventCancelled
		}

		var existing entities.EventRSVP
		err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error
		if err == nil && existing.Status == entities.RSVPStatusGoing {
			return ErrAlreadyGoing
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if event.Capacity > 0 {
			var going int64
			if err := tx.Model(&entities.EventRSVP{}).
				Where("event_id = ? AND status = ?", eventID, entities.RSVPStatusGoing).
				Count(&going).Error; err != nil {
				return err
			}
			if going >= int64(event.Capacity) {
				return ErrEventFull
			}
		}

		if existing.ID != 0 {
			if err := tx.Model(&existing).Update("status", entities.RSVPStatusGoing).Error; err != nil {
				return err
			}
			existing.Status = entities.RSVPStatusGoing
			rsvp = &existing
			return nil
		}

		created := entities.EventRSVP{
			EventID: eventID,
			UserID:  userID,
			Status:  entities.RSVPStatusGoing,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		rsvp = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rsvp, nil
}

// CancelRSVP withdraws an active RSVP. Reports not found when the user has
// no GOING RSVP on the event.
func (r *Repository) CancelRSVP(eventID, userID uint) error {
	res := r.db.Model(&entities.EventRSVP{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, entities.RSVPStatusGoing).
		Update("status", entities.RSVPStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CancelEvent marks an event cancelled. The attendee fan-out happens
// outside, after this commits.
func (r *Repository) CancelEvent(id uint) (*entities.Event, error) {
	var event entities.Event
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, id).Error; err != nil {
			return err
		}
		if event.Status == entities.EventStatusCancelled {
			return ErrEventCancelled
		}
		if err := tx.Model(&event).Update("status", entities.EventStatusCancelled).Error; err != nil {
			return err
		}
		event.Status = entities.EventStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GoingUserIDs returns all users with an active RSVP on the event.
func (r *Repository) GoingUserIDs(eventID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.Model(&entities.EventRSVP{}).
		Where("event_id = ? AND status = ?", eventID, entities.RSVPStatusGoing).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// ListRSVPs returns the active RSVPs of an event with users preloaded.
func (r *Repository) ListRSVPs(eventID uint) ([]entities.EventRSVP, error) {
	var rsvps []entities.EventRSVP
	err := r.db.Preload("User").
		Where("event_id = ? AND status = ?", eventID, entities.RSVPStatusGoing).
		Order("created_at ASC").
		Find(&rsvps).Error
	return rsvps, err
}

// --- Comments ---

func (r *Repository) CreateComment(eventID, authorID uint, content string) (*entities.EventComment, error) {
	if err := r.db.First(&entities.Event{}, eventID).Error; err != nil {
		return nil, err
	}
	comment := &entities.EventComment{
		EventID:  eventID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := r.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *Repository) ListComments(eventID uint) ([]entities.EventComment, error) {
	var comments []entities.EventComment
	err := r.db.Preload("Author").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *Repository) DeleteComment(id uint) error {
	res := r.db.Delete(&entities.EventComment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetComment retrieves a single comment, used for ownership checks.
func (r *Repository) GetComment(id uint) (*entities.EventComment, error) {
	var comment entities.EventComment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// CountAttended returns how many past events the user had an active RSVP
// on. This feeds the events_attended badge metric.
func (r *Repository) CountAttended(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.EventRSVP{}).
		Joins("JOIN events ON events.id = event_rsvps.event_id").
		Where("event_rsvps.user_id = ? AND event_rsvps.status = ? AND events.starts_at < ? AND events.status = ?",
			userID, entities.RSVPStatusGoing, time.Now(), entities.EventStatusScheduled).
		Count(&count).Error
	return count, err
}
