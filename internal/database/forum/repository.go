// Package forum provides database operations for discussion topics,
// threaded replies and likes.
//
// Topic listing uses a fixed three-key sort: pinned first, then like
// count, then creation time (newest first). Replies within a topic sort by
// like count, then creation time (oldest first).
package forum

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

var (
	// ErrTopicLocked is returned when replying to a locked topic.
	ErrTopicLocked = errors.New("topic is locked")

	// ErrBadParent is returned when a nested reply references a parent
	// from a different topic.
	ErrBadParent = errors.New("parent reply belongs to a different topic")
)

const (
	topicLikeCount  = "(SELECT COUNT(*) FROM topic_likes WHERE topic_likes.topic_id = topics.id) AS like_count"
	topicReplyCount = "(SELECT COUNT(*) FROM replies WHERE replies.topic_id = topics.id AND replies.deleted_at IS NULL) AS reply_count"
	replyLikeCount  = "(SELECT COUNT(*) FROM reply_likes WHERE reply_likes.reply_id = replies.id) AS like_count"
)

// Repository handles all forum database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Topics ---

func (r *Repository) CreateTopic(authorID uint, title, content string) (*entities.Topic, error) {
	topic := &entities.Topic{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := r.db.Create(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *Repository) GetTopic(id uint) (*entities.Topic, error) {
	var topic entities.Topic
	err := r.db.Preload("Author").
		Select("topics.*, "+topicLikeCount+", "+topicReplyCount).
		First(&topic, id).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// ListTopics returns topics in the fixed composite order:
// pinned desc, like count desc, created_at desc.
func (r *Repository) ListTopics(limit, offset int) ([]entities.Topic, int64, error) {
	var topics []entities.Topic
	var total int64

	if err := r.db.Model(&entities.Topic{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Model(&entities.Topic{}).
		Preload("Author").
		Select("topics.*, " + topicLikeCount + ", " + topicReplyCount).
		Order("pinned DESC, like_count DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&topics).Error
	return topics, total, err
}

// UpdateTopic replaces title and content. The edited flag is set only when
// something actually changed.
func (r *Repository) UpdateTopic(id uint, title, content string) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.db.First(&topic, id).Error; err != nil {
		return nil, err
	}

	changed := topic.Title != title || topic.Content != content
	if changed {
		updates := map[string]any{
			"title":   title,
			"content": content,
			"edited":  true,
		}
		if err := r.db.Model(&topic).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &topic, nil
}

func (r *Repository) DeleteTopic(id uint) error {
	res := r.db.Delete(&entities.Topic{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetModeration applies admin moderation toggles. Nil pointers leave the
// corresponding flag untouched.
func (r *Repository) SetModeration(id uint, pinned, locked, featured *bool) (*entities.Topic, error) {
	var topic entities.Topic
	if err := r.db.First(&topic, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if pinned != nil {
		updates["pinned"] = *pinned
	}
	if locked != nil {
		updates["locked"] = *locked
	}
	if featured != nil {
		updates["featured"] = *featured
	}
	if len(updates) > 0 {
		if err := r.db.Model(&topic).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &topic, nil
}

// ToggleTopicLike likes a topic, or removes the like if it already exists.
// Returns whether the topic is liked afterwards plus the new like count.
func (r *Repository) ToggleTopicLike(topicID, userID uint) (bool, int64, error) {
	if err := r.db.First(&entities.Topic{}, topicID).Error; err != nil {
		return false, 0, err
	}

	liked := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.TopicLike
		err := tx.Where("topic_id = ? AND user_id = ?", topicID, userID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			liked = true
			return tx.Create(&entities.TopicLike{TopicID: topicID, UserID: userID}).Error
		}
		if err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		return false, 0, err
	}

	var count int64
	err = r.db.Model(&entities.TopicLike{}).Where("topic_id = ?", topicID).Count(&count).Error
	return liked, count, err
}

// --- Replies ---

// CreateReply posts a reply to a topic. Locked topics reject replies.
// parentID, when set, must reference a reply on the same topic.
func (r *Repository) CreateReply(topicID, authorID uint, parentID *uint, content string) (*entities.Reply, error) {
	var topic entities.Topic
	if err := r.db.First(&topic, topicID).Error; err != nil {
		return nil, err
	}
	if topic.Locked {
		return nil, ErrTopicLocked
	}

	if parentID != nil {
		var parent entities.Reply
		if err := r.db.First(&parent, *parentID).Error; err != nil {
			return nil, err
		}
		if parent.TopicID != topicID {
			return nil, ErrBadParent
		}
	}

	reply := &entities.Reply{
		TopicID:  topicID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  content,
	}
	if err := r.db.Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

func (r *Repository) GetReply(id uint) (*entities.Reply, error) {
	var reply entities.Reply
	err := r.db.Preload("Author").
		Select("replies.*, "+replyLikeCount).
		First(&reply, id).Error
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListReplies returns a topic's replies ordered by like count desc, then
// creation time asc.
func (r *Repository) ListReplies(topicID uint) ([]entities.Reply, error) {
	var replies []entities.Reply
	err := r.db.Model(&entities.Reply{}).
		Preload("Author").
		Select("replies.*, "+replyLikeCount).
		Where("topic_id = ?", topicID).
		Order("like_count DESC, created_at ASC").
		Find(&replies).Error
	return replies, err
}

// UpdateReply replaces the content, setting the edited flag only on actual
// change.
func (r *Repository) UpdateReply(id uint, content string) (*entities.Reply, error) {
	var reply entities.Reply
	if err := r.db.First(&reply, id).Error; err != nil {
		return nil, err
	}

	if reply.Content != content {
		updates := map[string]any{"content": content, "edited": true}
		if err := r.db.Model(&reply).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &reply, nil
}

func (r *Repository) DeleteReply(id uint) error {
	res := r.db.Delete(&entities.Reply{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ToggleReplyLike likes a reply, or removes the like if it already exists.
func (r *Repository) ToggleReplyLike(replyID, userID uint) (bool, int64, error) {
	if err := r.db.First(&entities.Reply{}, replyID).Error; err != nil {
		return false, 0, err
	}

	liked := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.ReplyLike
		err := tx.Where("reply_id = ? AND user_id = ?", replyID, userID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			liked = true
			return tx.Create(&entities.ReplyLike{ReplyID: replyID, UserID: userID}).Error
		}
		if err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		return false, 0, err
	}

	var count int64
	err = r.db.Model(&entities.ReplyLike{}).Where("reply_id = ?", replyID).Count(&count).Error
	return liked, count, err
}

// --- Activity counters ---

// CountTopicsByAuthor returns how many topics a user has created.
func (r *Repository) CountTopicsByAuthor(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Topic{}).Where("author_id = ?", userID).Count(&count).Error
	return count, err
}

// CountRepliesByAuthor returns how many replies a user has posted.
func (r *Repository) CountRepliesByAuthor(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Reply{}).Where("author_id = ?", userID).Count(&count).Error
	return count, err
}
