package entities

import (
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

type RSVPStatus string

const (
	RSVPStatusGoing     RSVPStatus = "GOING"
	RSVPStatusCancelled RSVPStatus = "CANCELLED"
)

type Event struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"size:256" json:"title"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Location    string      `gorm:"size:256" json:"location,omitempty"`
	StartsAt    time.Time   `gorm:"index" json:"starts_at"`
	Capacity    int         `json:"capacity"` // 0 means unlimited
	Status      EventStatus `gorm:"size:20;index;default:'SCHEDULED'" json:"status"`
	Featured    bool        `gorm:"default:false" json:"featured"`

	RSVPs    []EventRSVP    `gorm:"foreignKey:EventID" json:"-"`
	Comments []EventComment `gorm:"foreignKey:EventID" json:"comments,omitempty"`

	GoingCount int64 `gorm:"->;-:migration" json:"going_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type EventRSVP struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"index;uniqueIndex:idx_rsvp_event_user" json:"event_id"`
	UserID    uint       `gorm:"index;uniqueIndex:idx_rsvp_event_user" json:"user_id"`
	Status    RSVPStatus `gorm:"size:20;default:'GOING'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (EventRSVP) TableName() string {
	return "event_rsvps"
}

type EventComment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	EventID  uint   `gorm:"index" json:"event_id"`
	AuthorID uint   `gorm:"index" json:"author_id"`
	Content  string `gorm:"type:text" json:"content"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (EventComment) TableName() string {
	return "event_comments"
}
