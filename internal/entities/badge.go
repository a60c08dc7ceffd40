package entities

import "time"

// BadgeMetric names the activity counter a badge requirement is measured
// against. Special badges have no metric and are granted manually.
type BadgeMetric string

const (
	MetricBooksCompleted BadgeMetric = "books_completed"
	MetricTopicsCreated  BadgeMetric = "topics_created"
	MetricRepliesPosted  BadgeMetric = "replies_posted"
	MetricEventsAttended BadgeMetric = "events_attended"
)

type Badge struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"uniqueIndex;size:100" json:"name"`
	Description string      `gorm:"size:500" json:"description,omitempty"`
	Category    string      `gorm:"size:50;index" json:"category,omitempty"`
	Icon        string      `gorm:"size:50" json:"icon,omitempty"`
	SortOrder   int         `gorm:"default:0" json:"sort_order"`
	Special     bool        `gorm:"default:false" json:"special"` // manually granted only
	Metric      BadgeMetric `gorm:"size:30" json:"metric,omitempty"`
	Requirement int         `json:"requirement,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"index;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"index;uniqueIndex:idx_user_badge" json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
