package http

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/audit"
	"github.com/bookclubhq/clubhouse/internal/database/events"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/tasks"
)

// EventStore covers club events, RSVPs and event comments.
type EventStore interface {
	CreateEvent(event *entities.Event) error
	GetEvent(id uint) (*entities.Event, error)
	ListEvents(upcoming bool, limit, offset int) ([]entities.Event, int64, error)
	UpdateEvent(id uint, fields map[string]any) (*entities.Event, error)
	CancelEvent(id uint) (*entities.Event, error)
	RSVP(eventID, userID uint) (*entities.EventRSVP, error)
	CancelRSVP(eventID, userID uint) error
	ListRSVPs(eventID uint) ([]entities.EventRSVP, error)
	CreateComment(eventID, authorID uint, content string) (*entities.EventComment, error)
	ListComments(eventID uint) ([]entities.EventComment, error)
	GetComment(id uint) (*entities.EventComment, error)
	DeleteComment(id uint) error
}

type EventsController struct {
	store      EventStore
	taskClient TaskEnqueuer
	auditor    *audit.Service
}

func NewEventsController(store EventStore, taskClient TaskEnqueuer, auditor *audit.Service) *EventsController {
	return &EventsController{
		store:      store,
		taskClient: taskClient,
		auditor:    auditor,
	}
}

// ListEvents returns events, soonest first. ?upcoming=true hides past
// and cancelled events.
func (ec *EventsController) ListEvents(c *gin.Context) {
	limit, offset := parsePagination(c)
	upcoming := c.Query("upcoming") == "true"

	list, total, err := ec.store.ListEvents(upcoming, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list events")
		return
	}

	c.JSON(200, paginated(list, total, limit, offset))
}

// GetEvent returns one event with its comments.
func (ec *EventsController) GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	event, err := ec.store.GetEvent(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "event")
			return
		}
		respondInternalError(c, err, "get event")
		return
	}

	comments, err := ec.store.ListComments(id)
	if err != nil {
		respondInternalError(c, err, "list event comments")
		return
	}

	c.JSON(200, gin.H{"event": event, "comments": comments})
}

type eventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	Capacity    int       `json:"capacity"`
	Featured    bool      `json:"featured"`
}

// CreateEvent schedules a new club event. Admin only.
func (ec *EventsController) CreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and starts_at are required")
		return
	}
	if req.Capacity < 0 {
		respondBadRequest(c, "capacity cannot be negative")
		return
	}

	event := &entities.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Capacity:    req.Capacity,
		Featured:    req.Featured,
		Status:      entities.EventStatusScheduled,
	}

	if err := ec.store.CreateEvent(event); err != nil {
		respondInternalError(c, err, "create event")
		return
	}

	ec.auditor.Record(GetUserID(c), entities.AuditEventCreate, "event", event.ID, event.Title)
	respondCreated(c, event)
}

// UpdateEvent edits event fields. The status field is protected; use
// the cancel endpoint instead. Admin only.
func (ec *EventsController) UpdateEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	event, err := ec.store.UpdateEvent(id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "event")
			return
		}
		respondInternalError(c, err, "update event")
		return
	}

	ec.auditor.Record(GetUserID(c), entities.AuditEventUpdate, "event", event.ID, event.Title)
	c.JSON(200, event)
}

// CancelEvent cancels an event and notifies every active attendee via
// the task queue. Admin only.
func (ec *EventsController) CancelEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	event, err := ec.store.CancelEvent(id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "event")
		case errors.Is(err, events.ErrEventCancelled):
			respondConflict(c, "event is already cancelled")
		default:
			respondInternalError(c, err, "cancel event")
		}
		return
	}

	if ec.taskClient != nil {
		_, _ = ec.taskClient.Add(tasks.EventCancelledTask{EventID: event.ID, Title: event.Title}).Save()
	}

	ec.auditor.Record(GetUserID(c), entities.AuditEventCancel, "event", event.ID, event.Title)
	c.JSON(200, event)
}

// RSVP books the caller a seat. Full or cancelled events reject RSVPs.
func (ec *EventsController) RSVP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	rsvp, err := ec.store.RSVP(id, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "event")
		case errors.Is(err, events.ErrEventFull):
			respondConflict(c, "event is full")
		case errors.Is(err, events.ErrEventCancelled):
			respondConflict(c, "event is cancelled")
		case errors.Is(err, events.ErrAlreadyGoing):
			respondConflict(c, "already attending this event")
		default:
			respondInternalError(c, err, "rsvp")
		}
		return
	}

	if ec.taskClient != nil {
		_, _ = ec.taskClient.Add(tasks.AwardBadgesTask{UserID: userID}).Save()
	}

	respondCreated(c, rsvp)
}

// CancelRSVP gives the caller's seat back.
func (ec *EventsController) CancelRSVP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ec.store.CancelRSVP(id, GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "rsvp")
			return
		}
		respondInternalError(c, err, "cancel rsvp")
		return
	}

	respondSuccess(c, "rsvp cancelled")
}

// ListRSVPs returns the attendee list for an event.
func (ec *EventsController) ListRSVPs(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rsvps, err := ec.store.ListRSVPs(id)
	if err != nil {
		respondInternalError(c, err, "list rsvps")
		return
	}

	c.JSON(200, gin.H{"rsvps": rsvps, "count": len(rsvps)})
}

type eventCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment posts a comment on an event page.
func (ec *EventsController) CreateComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req eventCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	comment, err := ec.store.CreateComment(id, GetUserID(c), req.Content)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "event")
			return
		}
		respondInternalError(c, err, "create event comment")
		return
	}

	respondCreated(c, comment)
}

// DeleteComment removes an event comment. Author only; moderators use
// the admin surface.
func (ec *EventsController) DeleteComment(c *gin.Context) {
	id, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	comment, err := ec.store.GetComment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "comment")
			return
		}
		respondInternalError(c, err, "get event comment")
		return
	}
	if comment.AuthorID != GetUserID(c) {
		respondForbidden(c, "only the author can delete a comment")
		return
	}

	if err := ec.store.DeleteComment(id); err != nil {
		respondInternalError(c, err, "delete event comment")
		return
	}

	respondSuccess(c, "comment deleted")
}
