// Package readinglist provides database operations for per-user reading
// trackers. Entries double as the waiting list consulted by the
// availability broadcast.
package readinglist

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// ErrInvalidStatus is returned for unknown reading statuses.
var ErrInvalidStatus = errors.New("invalid reading status")

// Repository handles all reading list database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func validStatus(status entities.ReadingStatus) bool {
	switch status {
	case entities.ReadingStatusToRead, entities.ReadingStatusReading, entities.ReadingStatusCompleted:
		return true
	}
	return false
}

// Upsert adds a book to a user's reading list or updates the status of an
// existing entry. Moving to completed stamps CompletedAt once.
func (r *Repository) Upsert(userID, bookID uint, status entities.ReadingStatus) (*entities.ReadingListEntry, error) {
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	// The book must exist
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		return nil, err
	}

	var entry entities.ReadingListEntry
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = entities.ReadingListEntry{UserID: userID, BookID: bookID, Status: status}
		if status == entities.ReadingStatusCompleted {
			now := time.Now()
			entry.CompletedAt = &now
		}
		if err := r.db.Create(&entry).Error; err != nil {
			return nil, err
		}
		return &entry, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": status}
	if status == entities.ReadingStatusCompleted && entry.CompletedAt == nil {
		updates["completed_at"] = time.Now()
	}
	if err := r.db.Model(&entry).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes a user's entry for a book.
func (r *Repository) Remove(userID, bookID uint) error {
	res := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.ReadingListEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUser returns a user's reading list, optionally filtered by status.
func (r *Repository) ListByUser(userID uint, status entities.ReadingStatus) ([]entities.ReadingListEntry, error) {
	var entries []entities.ReadingListEntry
	query := r.db.Preload("Book").Where("user_id = ?", userID)
	if status != "" {
		if !validStatus(status) {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}
	err := query.Order("updated_at DESC").Find(&entries).Error
	return entries, err
}

// WaitingUserIDs returns the distinct users with a reading list entry for
// the given book. These are the recipients of availability notifications.
func (r *Repository) WaitingUserIDs(bookID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.Model(&entities.ReadingListEntry{}).
		Where("book_id = ?", bookID).
		Distinct().
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// CountCompleted returns how many books a user has marked completed.
func (r *Repository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingListEntry{}).
		Where("user_id = ? AND status = ?", userID, entities.ReadingStatusCompleted).
		Count(&count).Error
	return count, err
}
