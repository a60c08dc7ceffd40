// Package notifications provides database operations for user-facing
// notifications. Rows are write-once: after creation only the read flag
// changes, and only the owner may delete them.
package notifications

import (
	"time"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// Repository handles all notification database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a single notification.
func (r *Repository) Create(userID uint, title, message, link string) (*entities.Notification, error) {
	n := &entities.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := r.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// CreateBatch inserts one notification per user ID. A failed insert is
// counted and skipped so the rest of the batch still goes out.
func (r *Repository) CreateBatch(userIDs []uint, title, message, link string) (created int, failed int) {
	for _, userID := range userIDs {
		if _, err := r.Create(userID, title, message, link); err != nil {
			failed++
			continue
		}
		created++
	}
	return created, failed
}

// HasRecent reports whether the user already received a notification with
// this title and link inside the window. The due-date sweep uses this to
// avoid sending the same reminder twice in a day.
func (r *Repository) HasRecent(userID uint, title, link string, window time.Duration) (bool, error) {
	var count int64
	cutoff := time.Now().Add(-window)
	err := r.db.Model(&entities.Notification{}).
		Where("user_id = ? AND title = ? AND link = ? AND created_at > ?", userID, title, link, cutoff).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns a user's notifications, unread first, newest first.
func (r *Repository) ListByUser(userID uint, limit, offset int) ([]entities.Notification, int64, error) {
	var items []entities.Notification
	var total int64

	if err := r.db.Model(&entities.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Where("user_id = ?", userID).
		Order("read ASC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&items).Error
	return items, total, err
}

// UnreadCount returns the number of unread notifications for a user.
func (r *Repository) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// SetRead flips the read flag on a single notification. Scoped to the
// owner; flipping somebody else's notification reports not found.
func (r *Repository) SetRead(userID, notificationID uint, read bool) error {
	res := r.db.Model(&entities.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", read)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read and
// returns how many were flipped.
func (r *Repository) MarkAllRead(userID uint) (int64, error) {
	res := r.db.Model(&entities.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

// Delete removes a notification. Scoped to the owner.
func (r *Repository) Delete(userID, notificationID uint) error {
	res := r.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&entities.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
