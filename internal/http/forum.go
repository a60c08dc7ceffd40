package http

import (
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/auth"
	"github.com/bookclubhq/clubhouse/internal/database/forum"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/tasks"
)

// ForumStore covers topics, replies and likes.
type ForumStore interface {
	CreateTopic(authorID uint, title, content string) (*entities.Topic, error)
	GetTopic(id uint) (*entities.Topic, error)
	ListTopics(limit, offset int) ([]entities.Topic, int64, error)
	UpdateTopic(id uint, title, content string) (*entities.Topic, error)
	DeleteTopic(id uint) error
	ToggleTopicLike(topicID, userID uint) (bool, int64, error)
	CreateReply(topicID, authorID uint, parentID *uint, content string) (*entities.Reply, error)
	GetReply(id uint) (*entities.Reply, error)
	ListReplies(topicID uint) ([]entities.Reply, error)
	UpdateReply(id uint, content string) (*entities.Reply, error)
	DeleteReply(id uint) error
	ToggleReplyLike(replyID, userID uint) (bool, int64, error)
}

type ForumController struct {
	store      ForumStore
	taskClient TaskEnqueuer
	notifier   Notifier
}

func NewForumController(store ForumStore, taskClient TaskEnqueuer, notifier Notifier) *ForumController {
	return &ForumController{store: store, taskClient: taskClient, notifier: notifier}
}

// notifyTopicAuthor tells a topic's author about activity on their
// topic. Self-activity is silent, and delivery failures never fail
// the request.
func (fc *ForumController) notifyTopicAuthor(topicID, actorID uint, title, message string) {
	topic, err := fc.store.GetTopic(topicID)
	if err != nil {
		log.Printf("Failed to load topic %d for notification: %v", topicID, err)
		return
	}
	if topic.AuthorID == actorID {
		return
	}
	link := fmt.Sprintf("/forum/topics/%d", topicID)
	if _, err := fc.notifier.Create(topic.AuthorID, title, fmt.Sprintf(message, topic.Title), link); err != nil {
		log.Printf("Failed to notify topic author %d: %v", topic.AuthorID, err)
	}
}

// ListTopics returns topics ordered pinned first, then by like count,
// then newest first.
func (fc *ForumController) ListTopics(c *gin.Context) {
	limit, offset := parsePagination(c)

	topics, total, err := fc.store.ListTopics(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list topics")
		return
	}

	c.JSON(200, paginated(topics, total, limit, offset))
}

// GetTopic returns one topic with its reply tree.
func (fc *ForumController) GetTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	topic, err := fc.store.GetTopic(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "topic")
			return
		}
		respondInternalError(c, err, "get topic")
		return
	}

	replies, err := fc.store.ListReplies(id)
	if err != nil {
		respondInternalError(c, err, "list replies")
		return
	}

	c.JSON(200, gin.H{"topic": topic, "replies": replies})
}

type topicRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreateTopic opens a new discussion and enqueues a badge check for
// the author.
func (fc *ForumController) CreateTopic(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and content are required")
		return
	}

	userID := GetUserID(c)
	topic, err := fc.store.CreateTopic(userID, req.Title, req.Content)
	if err != nil {
		respondInternalError(c, err, "create topic")
		return
	}

	if fc.taskClient != nil {
		_, _ = fc.taskClient.Add(tasks.AwardBadgesTask{UserID: userID}).Save()
	}

	respondCreated(c, topic)
}

// UpdateTopic edits a topic. Only the author may edit, and the topic
// is flagged as edited only when the text actually changed.
func (fc *ForumController) UpdateTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and content are required")
		return
	}

	topic, err := fc.store.GetTopic(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "topic")
			return
		}
		respondInternalError(c, err, "get topic")
		return
	}
	if topic.AuthorID != GetUserID(c) {
		respondForbidden(c, "only the author can edit a topic")
		return
	}

	updated, err := fc.store.UpdateTopic(id, req.Title, req.Content)
	if err != nil {
		respondInternalError(c, err, "update topic")
		return
	}

	c.JSON(200, updated)
}

// DeleteTopic removes a topic with its replies. Author or admin.
func (fc *ForumController) DeleteTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	topic, err := fc.store.GetTopic(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "topic")
			return
		}
		respondInternalError(c, err, "get topic")
		return
	}
	if topic.AuthorID != GetUserID(c) && auth.GetUserRole(c) != entities.RoleAdmin {
		respondForbidden(c, "only the author or an admin can delete a topic")
		return
	}

	if err := fc.store.DeleteTopic(id); err != nil {
		respondInternalError(c, err, "delete topic")
		return
	}

	respondSuccess(c, "topic deleted")
}

// LikeTopic toggles the caller's like on a topic.
func (fc *ForumController) LikeTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	liked, count, err := fc.store.ToggleTopicLike(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "topic")
			return
		}
		respondInternalError(c, err, "toggle topic like")
		return
	}

	if liked {
		fc.notifyTopicAuthor(id, userID, "Your topic was liked", "Someone liked %q")
	}

	c.JSON(200, gin.H{"liked": liked, "like_count": count})
}

type replyRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// CreateReply posts a reply, optionally nested under a parent reply of
// the same topic. Locked topics reject new replies.
func (fc *ForumController) CreateReply(c *gin.Context) {
	topicID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	userID := GetUserID(c)
	reply, err := fc.store.CreateReply(topicID, userID, req.ParentID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "topic")
		case errors.Is(err, forum.ErrTopicLocked):
			respondForbidden(c, "topic is locked")
		case errors.Is(err, forum.ErrBadParent):
			respondBadRequest(c, "parent reply belongs to a different topic")
		default:
			respondInternalError(c, err, "create reply")
		}
		return
	}

	fc.notifyTopicAuthor(topicID, userID, "New reply to your topic", "Your topic %q has a new reply")

	if fc.taskClient != nil {
		_, _ = fc.taskClient.Add(tasks.AwardBadgesTask{UserID: userID}).Save()
	}

	respondCreated(c, reply)
}

type replyEditRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateReply edits a reply. Author only.
func (fc *ForumController) UpdateReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req replyEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	reply, err := fc.store.GetReply(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reply")
			return
		}
		respondInternalError(c, err, "get reply")
		return
	}
	if reply.AuthorID != GetUserID(c) {
		respondForbidden(c, "only the author can edit a reply")
		return
	}

	updated, err := fc.store.UpdateReply(id, req.Content)
	if err != nil {
		respondInternalError(c, err, "update reply")
		return
	}

	c.JSON(200, updated)
}

// DeleteReply removes a reply. Author or admin.
func (fc *ForumController) DeleteReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reply, err := fc.store.GetReply(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reply")
			return
		}
		respondInternalError(c, err, "get reply")
		return
	}
	if reply.AuthorID != GetUserID(c) && auth.GetUserRole(c) != entities.RoleAdmin {
		respondForbidden(c, "only the author or an admin can delete a reply")
		return
	}

	if err := fc.store.DeleteReply(id); err != nil {
		respondInternalError(c, err, "delete reply")
		return
	}

	respondSuccess(c, "reply deleted")
}

// LikeReply toggles the caller's like on a reply.
func (fc *ForumController) LikeReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	liked, count, err := fc.store.ToggleReplyLike(id, GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reply")
			return
		}
		respondInternalError(c, err, "toggle reply like")
		return
	}

	c.JSON(200, gin.H{"liked": liked, "like_count": count})
}
