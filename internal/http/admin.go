package http

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/audit"
	"github.com/bookclubhq/clubhouse/internal/auth"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/reminders"
)

// ForumModerationStore is the moderation slice of the forum tables.
type ForumModerationStore interface {
	GetTopic(id uint) (*entities.Topic, error)
	SetModeration(id uint, pinned, locked, featured *bool) (*entities.Topic, error)
	DeleteTopic(id uint) error
	GetReply(id uint) (*entities.Reply, error)
	DeleteReply(id uint) error
}

// AdminController backs the /api/admin surface. Every route behind it
// runs with RequireAdmin and writes to the audit trail.
type AdminController struct {
	users   *auth.Service
	forum   ForumModerationStore
	auditor *audit.Service
	sweeper *reminders.Sweeper
}

func NewAdminController(users *auth.Service, forum ForumModerationStore, auditor *audit.Service, sweeper *reminders.Sweeper) *AdminController {
	return &AdminController{
		users:   users,
		forum:   forum,
		auditor: auditor,
		sweeper: sweeper,
	}
}

// ListUsers returns all members, oldest account first.
func (ac *AdminController) ListUsers(c *gin.Context) {
	limit, offset := parsePagination(c)

	users, total, err := ac.users.ListUsers(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	c.JSON(200, paginated(users, total, limit, offset))
}

type roleRequest struct {
	Role entities.UserRole `json:"role" binding:"required"`
}

// SetRole promotes or demotes a member. The super admin account cannot
// be demoted.
func (ac *AdminController) SetRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "role is required")
		return
	}

	user, err := ac.users.SetRole(id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrInvalidRole):
			respondBadRequest(c, "role must be member or admin")
		case errors.Is(err, auth.ErrSuperAdmin):
			respondForbidden(c, "the super admin role cannot be changed")
		default:
			respondInternalError(c, err, "set role")
		}
		return
	}

	ac.auditor.Record(GetUserID(c), entities.AuditRoleChange, "user", user.ID,
		fmt.Sprintf("%s is now %s", user.Username, user.Role))
	c.JSON(200, user)
}

type moderationRequest struct {
	Pinned   *bool `json:"pinned"`
	Locked   *bool `json:"locked"`
	Featured *bool `json:"featured"`
}

// ModerateTopic pins, locks or features a topic. Omitted fields keep
// their current value.
func (ac *AdminController) ModerateTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Pinned == nil && req.Locked == nil && req.Featured == nil {
		respondBadRequest(c, "at least one of pinned, locked, featured is required")
		return
	}

	topic, err := ac.forum.SetModeration(id, req.Pinned, req.Locked, req.Featured)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "topic")
			return
		}
		respondInternalError(c, err, "moderate topic")
		return
	}

	ac.auditor.Record(GetUserID(c), entities.AuditTopicModerate, "topic", topic.ID,
		fmt.Sprintf("pinned=%t locked=%t featured=%t", topic.Pinned, topic.Locked, topic.Featured))
	c.JSON(200, topic)
}

// DeleteTopic removes a topic together with its replies and likes.
func (ac *AdminController) DeleteTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	topic, err := ac.forum.GetTopic(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "topic")
			return
		}
		respondInternalError(c, err, "get topic")
		return
	}

	if err := ac.forum.DeleteTopic(id); err != nil {
		respondInternalError(c, err, "delete topic")
		return
	}

	ac.auditor.Record(GetUserID(c), entities.AuditTopicDelete, "topic", id, topic.Title)
	respondSuccess(c, "topic deleted")
}

// DeleteReply removes a single reply.
func (ac *AdminController) DeleteReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ac.forum.GetReply(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reply")
			return
		}
		respondInternalError(c, err, "get reply")
		return
	}

	if err := ac.forum.DeleteReply(id); err != nil {
		respondInternalError(c, err, "delete reply")
		return
	}

	ac.auditor.Record(GetUserID(c), entities.AuditReplyDelete, "reply", id, "")
	respondSuccess(c, "reply deleted")
}

// AuditLog returns moderation trail entries, newest first. Supports
// ?action= and ?actor_id= filters.
func (ac *AdminController) AuditLog(c *gin.Context) {
	limit, offset := parsePagination(c)

	var actorID uint
	if raw := c.Query("actor_id"); raw != "" {
		parsed, ok := parseQueryID(c, raw, "actor_id")
		if !ok {
			return
		}
		actorID = parsed
	}

	entries, total, err := ac.auditor.GetEntries(entities.AuditAction(c.Query("action")), actorID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit entries")
		return
	}

	c.JSON(200, paginated(entries, total, limit, offset))
}

// RunSweep triggers the due date reminder sweep outside its schedule.
func (ac *AdminController) RunSweep(c *gin.Context) {
	result, err := ac.sweeper.Run()
	ac.auditor.LogSweep(fmt.Sprintf("manual sweep by user %d", GetUserID(c)), err)
	if err != nil {
		respondInternalError(c, err, "run reminder sweep")
		return
	}

	c.JSON(200, result)
}
