package entities

import (
	"time"

	"gorm.io/gorm"
)

type Topic struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AuthorID uint   `gorm:"index" json:"author_id"`
	Title    string `gorm:"size:256" json:"title"`
	Content  string `gorm:"type:text" json:"content"`

	// Moderation flags, admin-only.
	Pinned   bool `gorm:"default:false;index" json:"pinned"`
	Locked   bool `gorm:"default:false" json:"locked"`
	Featured bool `gorm:"default:false" json:"featured"`

	Edited bool `gorm:"default:false" json:"edited"`

	Author  User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies []Reply     `gorm:"foreignKey:TopicID" json:"replies,omitempty"`
	Likes   []TopicLike `gorm:"foreignKey:TopicID" json:"-"`

	// Populated by queries via subquery aliases, never stored.
	LikeCount  int64 `gorm:"->;-:migration" json:"like_count"`
	ReplyCount int64 `gorm:"->;-:migration" json:"reply_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Reply struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TopicID  uint   `gorm:"index" json:"topic_id"`
	AuthorID uint   `gorm:"index" json:"author_id"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"` // set for nested replies
	Content  string `gorm:"type:text" json:"content"`
	Edited   bool   `gorm:"default:false" json:"edited"`

	Author User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Topic  Topic       `gorm:"foreignKey:TopicID" json:"-"`
	Likes  []ReplyLike `gorm:"foreignKey:ReplyID" json:"-"`

	LikeCount int64 `gorm:"->;-:migration" json:"like_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type TopicLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TopicID   uint      `gorm:"index;uniqueIndex:idx_topic_like_user" json:"topic_id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_topic_like_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (TopicLike) TableName() string {
	return "topic_likes"
}

type ReplyLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReplyID   uint      `gorm:"index;uniqueIndex:idx_reply_like_user" json:"reply_id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_reply_like_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReplyLike) TableName() string {
	return "reply_likes"
}
