package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/database/readinglist"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/tasks"
)

// ReadingListStore covers the per-member reading list.
type ReadingListStore interface {
	Upsert(userID, bookID uint, status entities.ReadingStatus) (*entities.ReadingListEntry, error)
	Remove(userID, bookID uint) error
	ListByUser(userID uint, status entities.ReadingStatus) ([]entities.ReadingListEntry, error)
}

type ReadingListController struct {
	store      ReadingListStore
	taskClient TaskEnqueuer
}

func NewReadingListController(store ReadingListStore, taskClient TaskEnqueuer) *ReadingListController {
	return &ReadingListController{store: store, taskClient: taskClient}
}

// List returns the authenticated user's reading list, optionally
// filtered by status.
func (rc *ReadingListController) List(c *gin.Context) {
	entries, err := rc.store.ListByUser(GetUserID(c), entities.ReadingStatus(c.Query("status")))
	if err != nil {
		if errors.Is(err, readinglist.ErrInvalidStatus) {
			respondBadRequest(c, "invalid status filter")
			return
		}
		respondInternalError(c, err, "list reading list")
		return
	}

	c.JSON(200, gin.H{"entries": entries, "count": len(entries)})
}

type readingListRequest struct {
	Status entities.ReadingStatus `json:"status" binding:"required"`
}

// Upsert adds a book to the reading list or moves it between statuses.
// Completing a book counts towards badges, so the badge check is
// enqueued after the write.
func (rc *ReadingListController) Upsert(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req readingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	userID := GetUserID(c)
	entry, err := rc.store.Upsert(userID, bookID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, readinglist.ErrInvalidStatus):
			respondBadRequest(c, "status must be one of to_read, reading, completed")
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "upsert reading list entry")
		}
		return
	}

	if req.Status == entities.ReadingStatusCompleted && rc.taskClient != nil {
		_, _ = rc.taskClient.Add(tasks.AwardBadgesTask{UserID: userID}).Save()
	}

	c.JSON(200, entry)
}

// Remove drops a book from the reading list.
func (rc *ReadingListController) Remove(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := rc.store.Remove(GetUserID(c), bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reading list entry")
			return
		}
		respondInternalError(c, err, "remove reading list entry")
		return
	}

	respondSuccess(c, "removed from reading list")
}
