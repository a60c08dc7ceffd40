package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

// defaultBadges is the seed catalog. Non-special badges carry a metric +
// requirement the award engine measures; special badges are granted
// manually by admins.
var defaultBadges = []entities.Badge{
	{Name: "First Chapter", Description: "Finish your first book", Category: "reading", Icon: "book-open", SortOrder: 1, Metric: entities.MetricBooksCompleted, Requirement: 1},
	{Name: "Bookworm", Description: "Finish 5 books", Category: "reading", Icon: "books", SortOrder: 2, Metric: entities.MetricBooksCompleted, Requirement: 5},
	{Name: "Bibliophile", Description: "Finish 25 books", Category: "reading", Icon: "library", SortOrder: 3, Metric: entities.MetricBooksCompleted, Requirement: 25},
	{Name: "Icebreaker", Description: "Start your first discussion", Category: "forum", Icon: "chat", SortOrder: 10, Metric: entities.MetricTopicsCreated, Requirement: 1},
	{Name: "Conversation Starter", Description: "Start 10 discussions", Category: "forum", Icon: "megaphone", SortOrder: 11, Metric: entities.MetricTopicsCreated, Requirement: 10},
	{Name: "First Reply", Description: "Post your first reply", Category: "forum", Icon: "reply", SortOrder: 12, Metric: entities.MetricRepliesPosted, Requirement: 1},
	{Name: "Chatterbox", Description: "Post 50 replies", Category: "forum", Icon: "comments", SortOrder: 13, Metric: entities.MetricRepliesPosted, Requirement: 50},
	{Name: "Regular", Description: "Attend 3 club events", Category: "events", Icon: "calendar", SortOrder: 20, Metric: entities.MetricEventsAttended, Requirement: 3},
	{Name: "Pillar of the Club", Description: "Attend 12 club events", Category: "events", Icon: "star", SortOrder: 21, Metric: entities.MetricEventsAttended, Requirement: 12},
	{Name: "Founder", Description: "Was there from the beginning", Category: "special", Icon: "trophy", SortOrder: 100, Special: true},
	{Name: "Staff Pick", Description: "Recognized by the moderators", Category: "special", Icon: "medal", SortOrder: 101, Special: true},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.BorrowLog{},
		&entities.ReadingListEntry{},
		&entities.Notification{},
		&entities.Badge{},
		&entities.UserBadge{},
		&entities.Topic{},
		&entities.Reply{},
		&entities.TopicLike{},
		&entities.ReplyLike{},
		&entities.Event{},
		&entities.EventRSVP{},
		&entities.EventComment{},
		&entities.AuditEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	// Seed the badge catalog
	if err := database.seedBadges(); err != nil {
		return nil, fmt.Errorf("failed to seed badges: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedBadges() error {
	for _, badge := range defaultBadges {
		var existing entities.Badge
		result := d.DB.Where("name = ?", badge.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&badge).Error; err != nil {
				return fmt.Errorf("failed to create badge %s: %w", badge.Name, err)
			}
			log.Printf("Created badge: %s", badge.Name)
		}
	}
	return nil
}
