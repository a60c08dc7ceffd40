package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

func createEvent(t *testing.T, app *testApp, title string, capacity int) entities.Event {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/events", app.adminToken, gin.H{
		"title":     title,
		"location":  "Club library",
		"starts_at": time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
		"capacity":  capacity,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var event entities.Event
	decode(t, w, &event)
	return event
}

func TestEvents_CreateRequiresAdmin(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	w := app.do(t, http.MethodPost, "/api/events", app.memberToken, gin.H{
		"title":     "Rogue meetup",
		"starts_at": time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEvents_RSVPCapacity(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	event := createEvent(t, app, "Tiny book circle", 1)
	rsvpPath := fmt.Sprintf("/api/events/%d/rsvp", event.ID)

	w := app.do(t, http.MethodPost, rsvpPath, app.memberToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var rsvp entities.EventRSVP
	decode(t, w, &rsvp)
	assert.Equal(t, entities.RSVPStatusGoing, rsvp.Status)

	// Duplicate RSVP
	w = app.do(t, http.MethodPost, rsvpPath, app.memberToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Capacity reached
	w = app.do(t, http.MethodPost, rsvpPath, app.adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Cancelling frees the seat, re-RSVP reactivates the row
	w = app.do(t, http.MethodDelete, rsvpPath, app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, rsvpPath, app.adminToken, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/rsvps", event.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rsvps struct {
		RSVPs []entities.EventRSVP `json:"rsvps"`
		Count int                  `json:"count"`
	}
	decode(t, w, &rsvps)
	assert.Equal(t, 1, rsvps.Count)
}

func TestEvents_Cancel(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	event := createEvent(t, app, "Doomed gathering", 0)
	cancelPath := fmt.Sprintf("/api/admin/events/%d/cancel", event.ID)

	w := app.do(t, http.MethodPost, cancelPath, app.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled entities.Event
	decode(t, w, &cancelled)
	assert.Equal(t, entities.EventStatusCancelled, cancelled.Status)

	// Cancelling twice conflicts
	w = app.do(t, http.MethodPost, cancelPath, app.adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// No RSVPs on a cancelled event
	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/rsvp", event.ID), app.memberToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEvents_UpdateProtectsStatus(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	event := createEvent(t, app, "Editable", 0)

	w := app.do(t, http.MethodPut, fmt.Sprintf("/api/events/%d", event.ID), app.adminToken, gin.H{
		"location": "Back room",
		"status":   "CANCELLED",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated entities.Event
	decode(t, w, &updated)
	assert.Equal(t, "Back room", updated.Location)
	assert.Equal(t, entities.EventStatusScheduled, updated.Status)
}

func TestEvents_Comments(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	event := createEvent(t, app, "Chatty", 0)

	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/events/%d/comments", event.ID), app.memberToken, gin.H{
		"content": "Should we bring snacks?",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment entities.EventComment
	decode(t, w, &comment)

	commentPath := fmt.Sprintf("/api/events/%d/comments/%d", event.ID, comment.ID)

	// Someone else's comment cannot be deleted
	w = app.do(t, http.MethodDelete, commentPath, app.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodDelete, commentPath, app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d", event.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Event    entities.Event          `json:"event"`
		Comments []entities.EventComment `json:"comments"`
	}
	decode(t, w, &detail)
	assert.Empty(t, detail.Comments)
}

func TestEvents_UpcomingFilter(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	createEvent(t, app, "Future meetup", 0)
	past := createEvent(t, app, "Past meetup", 0)
	require.NoError(t, app.db.DB.Model(&entities.Event{}).
		Where("id = ?", past.ID).
		Update("starts_at", time.Now().Add(-48*time.Hour)).Error)

	var page struct {
		Data  []entities.Event `json:"data"`
		Total int64            `json:"total"`
	}

	w := app.do(t, http.MethodGet, "/api/events?upcoming=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Future meetup", page.Data[0].Title)

	w = app.do(t, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Len(t, page.Data, 2)
}
