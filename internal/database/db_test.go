package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec("SELECT 1").Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestAutoMigrateCreatesNotificationTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, table := range []any{&models.Student{}, &models.Notification{}, &models.NotificationLog{}} {
		require.True(t, migrator.HasTable(table), "expected table for %T to exist", table)
	}
	require.True(t, migrator.HasIndex(&models.Notification{}, "RecipientID"))
}

func TestAutoMigrateAndSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, AutoMigrateAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	require.EqualValues(t, len(DemoStudents()), count)
}

func TestNotificationDefaults(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	n := models.Notification{RecipientID: 1, Title: "t", Message: "m", Channel: models.ChannelInApp, Status: models.StatusPending, Priority: models.DefaultPriority}
	require.NoError(t, db.Create(&n).Error)
	require.NotZero(t, n.ID)

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	require.Equal(t, models.StatusPending, stored.Status)
	require.False(t, stored.IsRead)
	require.Nil(t, stored.SentAt)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}
