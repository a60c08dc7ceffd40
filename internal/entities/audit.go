package entities

import "time"

type AuditAction string

const (
	AuditBookCreate    AuditAction = "book_create"
	AuditBookUpdate    AuditAction = "book_update"
	AuditBookDelete    AuditAction = "book_delete"
	AuditTopicModerate AuditAction = "topic_moderate"
	AuditTopicDelete   AuditAction = "topic_delete"
	AuditReplyDelete   AuditAction = "reply_delete"
	AuditEventCreate   AuditAction = "event_create"
	AuditEventUpdate   AuditAction = "event_update"
	AuditEventCancel   AuditAction = "event_cancel"
	AuditBadgeGrant    AuditAction = "badge_grant"
	AuditBadgeRevoke   AuditAction = "badge_revoke"
	AuditRoleChange    AuditAction = "role_change"
	AuditReminderSweep AuditAction = "reminder_sweep"
)

// AuditEntry records one admin/moderation mutation.
type AuditEntry struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	ActorID    uint        `gorm:"index" json:"actor_id"`
	Action     AuditAction `gorm:"index;size:50" json:"action"`
	EntityType string      `gorm:"size:50" json:"entity_type"` // "book", "topic", "event", ...
	EntityID   *uint       `gorm:"index" json:"entity_id,omitempty"`
	Detail     string      `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
