package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/database"
)

type schemaLevel int

const (
	schemaNone schemaLevel = iota
	schemaMigrated
	schemaSeeded
)

// TestDBOption raises the schema level prepared by MustOpenTestDB.
type TestDBOption func(*schemaLevel)

// WithAutoMigrate creates the notification and student tables.
func WithAutoMigrate() TestDBOption {
	return raise(schemaMigrated)
}

// WithSeedData migrates and inserts the demo roster.
func WithSeedData() TestDBOption {
	return raise(schemaSeeded)
}

func raise(level schemaLevel) TestDBOption {
	return func(current *schemaLevel) {
		if level > *current {
			*current = level
		}
	}
}

// MustOpenTestDB opens a private in-memory SQLite database that is closed when the test ends.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	level := schemaNone
	for _, opt := range opts {
		opt(&level)
	}

	db, err := database.Open(database.Config{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	switch level {
	case schemaSeeded:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case schemaMigrated:
		require.NoError(t, database.AutoMigrate(db))
	}
	return db
}
