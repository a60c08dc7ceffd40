package badges

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
	dbPath := "./test_badges_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Badge{},
		&entities.UserBadge{},
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

func createTestBadge(t *testing.T, db *gorm.DB, name string, special bool) *entities.Badge {
	badge := &entities.Badge{
		Name:        name,
		Special:     special,
		Metric:      entities.MetricBooksCompleted,
		Requirement: 1,
	}
	if special {
		badge.Metric = ""
		badge.Requirement = 0
	}
	require.NoError(t, db.Create(badge).Error)
	return badge
}

func TestRepository_Award_Idempotent(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	badge := createTestBadge(t, db, "First Chapter", false)

	created, err := repo.Award(1, badge.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Second award is a no-op
	created, err = repo.Award(1, badge.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	db.Model(&entities.UserBadge{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Revoke(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	badge := createTestBadge(t, db, "Founder", true)

	_, err := repo.Award(1, badge.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Revoke(1, badge.ID))
	assert.ErrorIs(t, repo.Revoke(1, badge.ID), ErrNotAwarded)
}

func TestRepository_ListMeasurable(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBadge(t, db, "First Chapter", false)
	createTestBadge(t, db, "Founder", true)

	measurable, err := repo.ListMeasurable()
	require.NoError(t, err)
	require.Len(t, measurable, 1)
	assert.Equal(t, "First Chapter", measurable[0].Name)

	all, err := repo.ListBadges()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_HeldBadgeIDs(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := createTestBadge(t, db, "First Chapter", false)
	second := createTestBadge(t, db, "Bookworm", false)

	_, err := repo.Award(1, first.ID)
	require.NoError(t, err)

	held, err := repo.HeldBadgeIDs(1)
	require.NoError(t, err)
	assert.True(t, held[first.ID])
	assert.False(t, held[second.ID])

	count, err := repo.CountByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ListUserBadges(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	badge := createTestBadge(t, db, "First Chapter", false)
	_, err := repo.Award(1, badge.ID)
	require.NoError(t, err)

	earned, err := repo.ListUserBadges(1)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "First Chapter", earned[0].Badge.Name)
	assert.False(t, earned[0].EarnedAt.IsZero())
}
