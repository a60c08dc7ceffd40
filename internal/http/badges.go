package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/audit"
	"github.com/bookclubhq/clubhouse/internal/database/badges"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/gamification"
)

// BadgeCatalog is the read side of the badge tables.
type BadgeCatalog interface {
	ListBadges() ([]entities.Badge, error)
	ListUserBadges(userID uint) ([]entities.UserBadge, error)
}

type BadgesController struct {
	catalog BadgeCatalog
	engine  *gamification.Service
	auditor *audit.Service
}

func NewBadgesController(catalog BadgeCatalog, engine *gamification.Service, auditor *audit.Service) *BadgesController {
	return &BadgesController{
		catalog: catalog,
		engine:  engine,
		auditor: auditor,
	}
}

// ListBadges returns the full badge catalog.
func (bc *BadgesController) ListBadges(c *gin.Context) {
	list, err := bc.catalog.ListBadges()
	if err != nil {
		respondInternalError(c, err, "list badges")
		return
	}

	c.JSON(200, gin.H{"badges": list, "count": len(list)})
}

// MyBadges returns the badges the authenticated user holds.
func (bc *BadgesController) MyBadges(c *gin.Context) {
	list, err := bc.catalog.ListUserBadges(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list user badges")
		return
	}

	c.JSON(200, gin.H{"badges": list, "count": len(list)})
}

// MyProgress returns the unearned measurable badges with the caller's
// current counter next to each requirement.
func (bc *BadgesController) MyProgress(c *gin.Context) {
	progress, err := bc.engine.Progress(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "badge progress")
		return
	}

	c.JSON(200, gin.H{"progress": progress})
}

// MyLevel derives the caller's level from live activity counters.
func (bc *BadgesController) MyLevel(c *gin.Context) {
	level, counters, err := bc.engine.LevelForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "compute level")
		return
	}

	c.JSON(200, gin.H{"level": level, "counters": counters})
}

// UserBadges returns the badges held by any member, for profile pages.
func (bc *BadgesController) UserBadges(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := bc.catalog.ListUserBadges(userID)
	if err != nil {
		respondInternalError(c, err, "list user badges")
		return
	}

	c.JSON(200, gin.H{"badges": list, "count": len(list)})
}

type badgeGrantRequest struct {
	UserID  uint `json:"user_id" binding:"required"`
	BadgeID uint `json:"badge_id" binding:"required"`
}

// Grant manually awards a badge, including special ones. Admin only.
func (bc *BadgesController) Grant(c *gin.Context) {
	var req badgeGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "user_id and badge_id are required")
		return
	}

	badge, err := bc.engine.Grant(req.UserID, req.BadgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "badge")
			return
		}
		respondInternalError(c, err, "grant badge")
		return
	}

	bc.auditor.Record(GetUserID(c), entities.AuditBadgeGrant, "badge", req.BadgeID, badge.Name)
	c.JSON(200, badge)
}

// Revoke removes a badge from a member. Admin only.
func (bc *BadgesController) Revoke(c *gin.Context) {
	var req badgeGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "user_id and badge_id are required")
		return
	}

	if err := bc.engine.Revoke(req.UserID, req.BadgeID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "badge")
		case errors.Is(err, badges.ErrNotAwarded):
			respondNotFound(c, "badge pairing")
		default:
			respondInternalError(c, err, "revoke badge")
		}
		return
	}

	bc.auditor.Record(GetUserID(c), entities.AuditBadgeRevoke, "badge", req.BadgeID, "")
	respondSuccess(c, "badge revoked")
}
