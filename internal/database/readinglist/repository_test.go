package readinglist

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_readinglist_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.ReadingListEntry{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestBook(t *testing.T, db *gorm.DB, title string) *entities.Book {
	book := &entities.Book{Title: title, Author: "Author", Available: true}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestRepository_Upsert(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, "The Trial")

	entry, err := repo.Upsert(1, book.ID, entities.ReadingStatusToRead)
	require.NoError(t, err)
	assert.Equal(t, entities.ReadingStatusToRead, entry.Status)
	assert.Nil(t, entry.CompletedAt)

	// Same (user, book) updates in place
	entry, err = repo.Upsert(1, book.ID, entities.ReadingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entities.ReadingStatusCompleted, entry.Status)

	var count int64
	db.Model(&entities.ReadingListEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var stored entities.ReadingListEntry
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.NotNil(t, stored.CompletedAt)
}

func TestRepository_Upsert_InvalidStatus(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, "The Trial")

	_, err := repo.Upsert(1, book.ID, entities.ReadingStatus("abandoned"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRepository_Upsert_MissingBook(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Upsert(1, 9999, entities.ReadingStatusToRead)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Remove(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, "The Trial")

	_, err := repo.Upsert(1, book.ID, entities.ReadingStatusReading)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(1, book.ID))
	assert.ErrorIs(t, repo.Remove(1, book.ID), gorm.ErrRecordNotFound)
}

func TestRepository_WaitingUserIDs(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	wanted := createTestBook(t, db, "Popular")
	other := createTestBook(t, db, "Obscure")

	_, err := repo.Upsert(1, wanted.ID, entities.ReadingStatusToRead)
	require.NoError(t, err)
	_, err = repo.Upsert(2, wanted.ID, entities.ReadingStatusReading)
	require.NoError(t, err)
	_, err = repo.Upsert(3, other.ID, entities.ReadingStatusToRead)
	require.NoError(t, err)

	ids, err := repo.WaitingUserIDs(wanted.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, ids)
}

func TestRepository_CountCompleted(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := createTestBook(t, db, "First")
	second := createTestBook(t, db, "Second")
	third := createTestBook(t, db, "Third")

	_, err := repo.Upsert(1, first.ID, entities.ReadingStatusCompleted)
	require.NoError(t, err)
	_, err = repo.Upsert(1, second.ID, entities.ReadingStatusCompleted)
	require.NoError(t, err)
	_, err = repo.Upsert(1, third.ID, entities.ReadingStatusReading)
	require.NoError(t, err)

	count, err := repo.CountCompleted(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_ListByUser(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := createTestBook(t, db, "First")
	second := createTestBook(t, db, "Second")

	_, err := repo.Upsert(1, first.ID, entities.ReadingStatusToRead)
	require.NoError(t, err)
	_, err = repo.Upsert(1, second.ID, entities.ReadingStatusCompleted)
	require.NoError(t, err)
	_, err = repo.Upsert(2, first.ID, entities.ReadingStatusToRead)
	require.NoError(t, err)

	all, err := repo.ListByUser(1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := repo.ListByUser(1, entities.ReadingStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, second.ID, completed[0].BookID)
	assert.Equal(t, "Second", completed[0].Book.Title)
}
