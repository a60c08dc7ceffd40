package entities

import "time"

// Notification is write-once: after creation only the Read flag changes,
// and only the owner may delete it.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Title     string    `gorm:"size:256" json:"title"`
	Message   string    `gorm:"size:1000" json:"message"`
	Link      string    `gorm:"size:512" json:"link,omitempty"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
