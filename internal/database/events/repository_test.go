package events

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_events_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Event{},
		&entities.EventRSVP{},
		&entities.EventComment{},
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

func createTestEvent(t *testing.T, repo *Repository, title string, capacity int) *entities.Event {
	event := &entities.Event{
		Title:    title,
		StartsAt: time.Now().Add(72 * time.Hour),
		Capacity: capacity,
	}
	require.NoError(t, repo.CreateEvent(event))
	return event
}

func TestRepository_RSVP(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Monthly meetup", 0)

	rsvp, err := repo.RSVP(event.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.RSVPStatusGoing, rsvp.Status)

	// Duplicate RSVP is rejected
	_, err = repo.RSVP(event.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyGoing)
}

func TestRepository_RSVP_CapacityEnforced(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Small room", 2)

	_, err := repo.RSVP(event.ID, 1)
	require.NoError(t, err)
	_, err = repo.RSVP(event.ID, 2)
	require.NoError(t, err)

	_, err = repo.RSVP(event.ID, 3)
	assert.ErrorIs(t, err, ErrEventFull)

	// Someone cancels, a seat opens up
	require.NoError(t, repo.CancelRSVP(event.ID, 1))

	_, err = repo.RSVP(event.ID, 3)
	require.NoError(t, err)

	ids, err := repo.GoingUserIDs(event.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, ids)
}

func TestRepository_RSVP_ReactivatesCancelledRow(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Meetup", 0)

	_, err := repo.RSVP(event.ID, 1)
	require.NoError(t, err)
	require.NoError(t, repo.CancelRSVP(event.ID, 1))

	_, err = repo.RSVP(event.ID, 1)
	require.NoError(t, err)

	// One row per (event, user), not two
	var count int64
	db.Model(&entities.EventRSVP{}).Where("event_id = ?", event.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_CancelRSVP_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Meetup", 0)

	err := repo.CancelRSVP(event.ID, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_CancelEvent(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Meetup", 0)
	_, err := repo.RSVP(event.ID, 1)
	require.NoError(t, err)
	_, err = repo.RSVP(event.ID, 2)
	require.NoError(t, err)

	cancelled, err := repo.CancelEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.EventStatusCancelled, cancelled.Status)

	// Attendee list survives for the fan-out
	ids, err := repo.GoingUserIDs(event.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, ids)

	// No RSVPs on a cancelled event
	_, err = repo.RSVP(event.ID, 3)
	assert.ErrorIs(t, err, ErrEventCancelled)

	// Cancelling twice fails
	_, err = repo.CancelEvent(event.ID)
	assert.ErrorIs(t, err, ErrEventCancelled)
}

func TestRepository_UpdateEvent_ProtectsStatus(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Old title", 0)

	updated, err := repo.UpdateEvent(event.ID, map[string]any{
		"title":  "New title",
		"status": entities.EventStatusCancelled, // must be ignored
	})
	require.NoError(t, err)

	fresh, err := repo.GetEvent(updated.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", fresh.Title)
	assert.Equal(t, entities.EventStatusScheduled, fresh.Status)
}

func TestRepository_ListEvents_Upcoming(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	past := createTestEvent(t, repo, "Past", 0)
	require.NoError(t, db.Model(&entities.Event{}).
		Where("id = ?", past.ID).
		Update("starts_at", time.Now().Add(-24*time.Hour)).Error)
	createTestEvent(t, repo, "Future", 0)

	all, total, err := repo.ListEvents(false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	upcoming, total, err := repo.ListEvents(true, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Future", upcoming[0].Title)
}

func TestRepository_Comments(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	event := createTestEvent(t, repo, "Meetup", 0)

	_, err := repo.CreateComment(event.ID, 1, "Looking forward to it")
	require.NoError(t, err)
	second, err := repo.CreateComment(event.ID, 2, "Same here")
	require.NoError(t, err)

	comments, err := repo.ListComments(event.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Looking forward to it", comments[0].Content)

	require.NoError(t, repo.DeleteComment(second.ID))
	assert.ErrorIs(t, repo.DeleteComment(second.ID), gorm.ErrRecordNotFound)

	_, err = repo.CreateComment(9999, 1, "no event")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_CountAttended(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	attended := createTestEvent(t, repo, "Attended", 0)
	_, err := repo.RSVP(attended.ID, 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&entities.Event{}).
		Where("id = ?", attended.ID).
		Update("starts_at", time.Now().Add(-24*time.Hour)).Error)

	// A future RSVP does not count yet
	future := createTestEvent(t, repo, "Future", 0)
	_, err = repo.RSVP(future.ID, 1)
	require.NoError(t, err)

	count, err := repo.CountAttended(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
