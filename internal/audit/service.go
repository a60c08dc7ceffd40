// Package audit provides the moderation trail: every admin mutation is
// recorded with actor, action and target so moderation decisions can be
// reviewed later.
package audit

import (
	"log"
	"time"

	"github.com/bookclubhq/clubhouse/internal/database/audit"
	"github.com/bookclubhq/clubhouse/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an entry synchronously.
func (s *Service) Log(entry *entities.AuditEntry) error {
	return s.repo.LogEntry(entry)
}

// LogAsync records an entry in the background. Audit writes never block
// or fail the mutation they describe.
func (s *Service) LogAsync(entry *entities.AuditEntry) {
	go func() {
		if err := s.repo.LogEntry(entry); err != nil {
			log.Printf("Failed to log audit entry: %v", err)
		}
	}()
}

// Record captures one admin mutation against a target entity.
func (s *Service) Record(actorID uint, action entities.AuditAction, entityType string, entityID uint, detail string) {
	entry := &entities.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		Detail:     truncate(detail, 500),
	}
	if entityID != 0 {
		entry.EntityID = &entityID
	}
	s.LogAsync(entry)
}

// LogSweep records the outcome of a reminder sweep. Sweeps run with no
// acting user, so the actor is zero.
func (s *Service) LogSweep(description string, err error) {
	detail := description
	if err != nil {
		detail = "FAILED: " + err.Error()
	}
	s.LogAsync(&entities.AuditEntry{
		Action:     entities.AuditReminderSweep,
		EntityType: "book",
		Detail:     truncate(detail, 500),
	})
}

// GetEntries retrieves paginated entries, optionally filtered.
func (s *Service) GetEntries(action entities.AuditAction, actorID uint, limit, offset int) ([]entities.AuditEntry, int64, error) {
	return s.repo.GetEntries(action, actorID, limit, offset)
}

// DeleteOldEntries removes entries older than the retention period.
func (s *Service) DeleteOldEntries(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEntries(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
