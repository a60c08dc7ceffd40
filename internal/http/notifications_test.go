package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

func seedNotification(t *testing.T, app *testApp, userID uint, title string) *entities.Notification {
	t.Helper()
	n, err := app.notifications.Create(userID, title, "something happened", "/somewhere")
	require.NoError(t, err)
	return n
}

func TestNotifications_ListAndUnreadCount(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	seedNotification(t, app, app.memberID, "first")
	seedNotification(t, app, app.memberID, "second")
	seedNotification(t, app, app.adminID, "not yours")

	w := app.do(t, http.MethodGet, "/api/notifications", app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data  []entities.Notification `json:"data"`
		Total int64                   `json:"total"`
	}
	decode(t, w, &page)
	require.Len(t, page.Data, 2)
	assert.EqualValues(t, 2, page.Total)
	for _, n := range page.Data {
		assert.Equal(t, app.memberID, n.UserID)
	}

	w = app.do(t, http.MethodGet, "/api/notifications/unread-count", app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Unread int64 `json:"unread"`
	}
	decode(t, w, &count)
	assert.EqualValues(t, 2, count.Unread)
}

func TestNotifications_MarkReadAndDelete(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	mine := seedNotification(t, app, app.memberID, "mine")
	theirs := seedNotification(t, app, app.adminID, "theirs")

	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", mine.ID), app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Another user's notification looks like it does not exist
	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", theirs.ID), app.memberToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", theirs.ID), app.memberToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", mine.ID), app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	list, total, err := app.notifications.ListByUser(app.memberID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.EqualValues(t, 0, total)
}

func TestNotifications_MarkAllRead(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	seedNotification(t, app, app.memberID, "a")
	seedNotification(t, app, app.memberID, "b")
	seedNotification(t, app, app.memberID, "c")

	w := app.do(t, http.MethodPost, "/api/notifications/read-all", app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Updated int64 `json:"updated"`
	}
	decode(t, w, &result)
	assert.EqualValues(t, 3, result.Updated)

	count, err := app.notifications.UnreadCount(app.memberID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
