// Package badges provides database operations for the badge catalog and
// the (user, badge) award join.
package badges

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// ErrNotAwarded is returned when revoking a badge the user does not hold.
var ErrNotAwarded = errors.New("badge not awarded to this user")

// Repository handles all badge database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBadges returns the whole catalog in display order.
func (r *Repository) ListBadges() ([]entities.Badge, error) {
	var badges []entities.Badge
	err := r.db.Order("sort_order ASC, name ASC").Find(&badges).Error
	return badges, err
}

// ListMeasurable returns the non-special badges, i.e. the ones the award
// engine checks thresholds for.
func (r *Repository) ListMeasurable() ([]entities.Badge, error) {
	var badges []entities.Badge
	err := r.db.Where("special = ?", false).
		Order("sort_order ASC, name ASC").
		Find(&badges).Error
	return badges, err
}

func (r *Repository) GetBadge(id uint) (*entities.Badge, error) {
	var badge entities.Badge
	if err := r.db.First(&badge, id).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

// ListUserBadges returns the badges a user holds, newest first.
func (r *Repository) ListUserBadges(userID uint) ([]entities.UserBadge, error) {
	var earned []entities.UserBadge
	err := r.db.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error
	return earned, err
}

// HeldBadgeIDs returns the set of badge IDs a user holds.
func (r *Repository) HeldBadgeIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.Model(&entities.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	held := make(map[uint]bool, len(ids))
	for _, id := range ids {
		held[id] = true
	}
	return held, nil
}

// Award inserts a (user, badge) row. Returns false without error when the
// user already holds the badge, keeping award checks idempotent.
func (r *Repository) Award(userID, badgeID uint) (bool, error) {
	var existing entities.UserBadge
	err := r.db.Where("user_id = ? AND badge_id = ?", userID, badgeID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	ub := entities.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now(),
	}
	if err := r.db.Create(&ub).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes a (user, badge) row. Returns ErrNotAwarded when the
// pairing does not exist.
func (r *Repository) Revoke(userID, badgeID uint) error {
	res := r.db.Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Delete(&entities.UserBadge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotAwarded
	}
	return nil
}

// CountByUser returns how many badges a user holds. Feeds the level score.
func (r *Repository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
