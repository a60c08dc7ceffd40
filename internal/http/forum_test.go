package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

func createTopic(t *testing.T, app *testApp, token, title string) entities.Topic {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/forum/topics", token, gin.H{
		"title":   title,
		"content": "What did everyone think?",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var topic entities.Topic
	decode(t, w, &topic)
	return topic
}

func TestForum_TopicLifecycle(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "October pick discussion")
	path := fmt.Sprintf("/api/forum/topics/%d", topic.ID)

	// Only the author can edit
	w := app.do(t, http.MethodPut, path, app.adminToken, gin.H{
		"title": "hijacked", "content": "nope",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, path, app.memberToken, gin.H{
		"title": "October pick discussion", "content": "What did everyone think? Spoilers ahead.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var edited entities.Topic
	decode(t, w, &edited)
	assert.True(t, edited.Edited)

	w = app.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Topic   entities.Topic   `json:"topic"`
		Replies []entities.Reply `json:"replies"`
	}
	decode(t, w, &detail)
	assert.Equal(t, topic.ID, detail.Topic.ID)
	assert.Empty(t, detail.Replies)
}

func TestForum_RepliesNotifyTopicAuthor(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "Reply notifications")

	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.adminToken, gin.H{
		"content": "Loved the ending.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	list, _, err := app.notifications.ListByUser(app.memberID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New reply to your topic", list[0].Title)

	// Replying to your own topic stays silent
	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.memberToken, gin.H{
		"content": "Agreed!",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	list, _, err = app.notifications.ListByUser(app.memberID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestForum_NestedReplies(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "Nesting")
	other := createTopic(t, app, app.memberToken, "Unrelated")

	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.adminToken, gin.H{
		"content": "top level",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var parent entities.Reply
	decode(t, w, &parent)

	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.memberToken, gin.H{
		"content":   "nested",
		"parent_id": parent.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var nested entities.Reply
	decode(t, w, &nested)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, parent.ID, *nested.ParentID)

	// A parent from another topic is rejected
	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", other.ID), app.memberToken, gin.H{
		"content":   "cross-topic",
		"parent_id": parent.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForum_Likes(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "Likeable")
	likePath := fmt.Sprintf("/api/forum/topics/%d/like", topic.ID)

	var like struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}

	w := app.do(t, http.MethodPost, likePath, app.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &like)
	assert.True(t, like.Liked)
	assert.EqualValues(t, 1, like.LikeCount)

	// Likes notify the topic author
	list, _, err := app.notifications.ListByUser(app.memberID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Your topic was liked", list[0].Title)

	// Toggle off
	w = app.do(t, http.MethodPost, likePath, app.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &like)
	assert.False(t, like.Liked)
	assert.EqualValues(t, 0, like.LikeCount)
}

func TestForum_ModerationAndLocking(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "Moderated")
	moderatePath := fmt.Sprintf("/api/admin/forum/topics/%d/moderate", topic.ID)

	// Members cannot moderate
	w := app.do(t, http.MethodPut, moderatePath, app.memberToken, gin.H{"locked": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, moderatePath, app.adminToken, gin.H{"pinned": true, "locked": true})
	require.Equal(t, http.StatusOK, w.Code)
	var moderated entities.Topic
	decode(t, w, &moderated)
	assert.True(t, moderated.Pinned)
	assert.True(t, moderated.Locked)

	// Locked topics reject replies
	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.adminToken, gin.H{
		"content": "too late",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Moderation actions land in the audit trail
	page := app.waitForAudit(t, "?action=topic_moderate", 1)
	assert.Equal(t, entities.AuditTopicModerate, page.Data[0].Action)
}

func TestForum_AdminDeletes(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "Doomed")
	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.adminToken, gin.H{
		"content": "soon gone",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reply entities.Reply
	decode(t, w, &reply)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/forum/replies/%d", reply.ID), app.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/forum/topics/%d", topic.ID), app.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/forum/topics/%d", topic.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForum_AuthorDeletes(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	topic := createTopic(t, app, app.memberToken, "Second thoughts")
	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/forum/topics/%d/replies", topic.ID), app.memberToken, gin.H{
		"content": "actually, never mind",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reply entities.Reply
	decode(t, w, &reply)

	// Other members cannot delete someone else's content
	other := createTopic(t, app, app.adminToken, "Not yours")
	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/forum/topics/%d", other.ID), app.memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/forum/replies/%d", reply.ID), app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/forum/topics/%d", topic.ID), app.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/forum/topics/%d", topic.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
