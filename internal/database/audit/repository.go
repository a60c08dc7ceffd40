// Package audit persists the moderation trail.
package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEntry appends one entry to the trail. Entries are write-once.
func (r *Repository) LogEntry(entry *entities.AuditEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log audit entry: %w", err)
	}
	return nil
}

// GetEntries returns entries newest first, optionally filtered by action
// and actor. Zero actorID and empty action mean no filter.
func (r *Repository) GetEntries(action entities.AuditAction, actorID uint, limit, offset int) ([]entities.AuditEntry, int64, error) {
	query := r.db.Model(&entities.AuditEntry{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if actorID != 0 {
		query = query.Where("actor_id = ?", actorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	var entries []entities.AuditEntry
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, total, nil
}

// DeleteOldEntries removes entries created before the cutoff.
func (r *Repository) DeleteOldEntries(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old audit entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
