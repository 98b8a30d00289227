package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newFavoriteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Favorite{}))
	return db
}

func TestFavoriteUniquePerUserAndTarget(t *testing.T) {
	db := newFavoriteTestDB(t)

	docketID := uint(7)
	require.NoError(t, db.Create(&Favorite{UserID: "alice", Name: "lead case", DocketID: &docketID}).Error)

	// A second favorite for the same (user, target) is rejected by the
	// database even when the handler-level check is bypassed.
	err := db.Create(&Favorite{UserID: "alice", Name: "duplicate", DocketID: &docketID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Another user may favorite the same docket.
	require.NoError(t, db.Create(&Favorite{UserID: "bob", Name: "lead case", DocketID: &docketID}).Error)

	// The same numeric ID in a different target column is a different target.
	clusterID := uint(7)
	require.NoError(t, db.Create(&Favorite{UserID: "alice", Name: "opinion", ClusterID: &clusterID}).Error)

	// And a second docket favorite for the same user is fine too.
	otherDocket := uint(8)
	require.NoError(t, db.Create(&Favorite{UserID: "alice", Name: "second case", DocketID: &otherDocket}).Error)
}

func TestFavoriteTargetCount(t *testing.T) {
	docketID := uint(1)
	audioID := uint(2)

	assert.Equal(t, 0, (&Favorite{}).TargetCount())
	assert.Equal(t, 1, (&Favorite{DocketID: &docketID}).TargetCount())
	assert.Equal(t, 2, (&Favorite{DocketID: &docketID, AudioID: &audioID}).TargetCount())
}
