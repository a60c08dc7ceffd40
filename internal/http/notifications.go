package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// NotificationStore covers the per-user notification feed.
type NotificationStore interface {
	ListByUser(userID uint, limit, offset int) ([]entities.Notification, int64, error)
	UnreadCount(userID uint) (int64, error)
	SetRead(userID, notificationID uint, read bool) error
	MarkAllRead(userID uint) (int64, error)
	Delete(userID, notificationID uint) error
}

type NotificationsController struct {
	store NotificationStore
}

func NewNotificationsController(store NotificationStore) *NotificationsController {
	return &NotificationsController{store: store}
}

// List returns the caller's notifications, unread first.
func (nc *NotificationsController) List(c *gin.Context) {
	limit, offset := parsePagination(c)

	list, total, err := nc.store.ListByUser(GetUserID(c), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list notifications")
		return
	}

	c.JSON(200, paginated(list, total, limit, offset))
}

// UnreadCount returns the caller's unread notification count, for the
// navbar bell.
func (nc *NotificationsController) UnreadCount(c *gin.Context) {
	count, err := nc.store.UnreadCount(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "unread count")
		return
	}

	c.JSON(200, gin.H{"unread": count})
}

// MarkRead flags one notification as read, or back to unread when the
// body says {"read": false}. Owner only; the store scopes the update
// by user.
func (nc *NotificationsController) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	read := true
	var body struct {
		Read *bool `json:"read"`
	}
	if err := c.ShouldBindJSON(&body); err == nil && body.Read != nil {
		read = *body.Read
	}

	if err := nc.store.SetRead(GetUserID(c), id, read); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "notification")
			return
		}
		respondInternalError(c, err, "mark notification read")
		return
	}

	if read {
		respondSuccess(c, "notification marked read")
		return
	}
	respondSuccess(c, "notification marked unread")
}

// MarkAllRead flags every notification of the caller as read.
func (nc *NotificationsController) MarkAllRead(c *gin.Context) {
	updated, err := nc.store.MarkAllRead(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "mark all read")
		return
	}

	c.JSON(200, gin.H{"message": "all notifications marked read", "updated": updated})
}

// Delete removes one notification from the caller's feed.
func (nc *NotificationsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := nc.store.Delete(GetUserID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "notification")
			return
		}
		respondInternalError(c, err, "delete notification")
		return
	}

	respondSuccess(c, "notification deleted")
}
