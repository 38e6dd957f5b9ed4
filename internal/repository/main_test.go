package repository

import (
	"context"
	"testing"
	"time"

	"musefeed/internal/database"
	"musefeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every goroutine on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createMedia(t *testing.T, db *gorm.DB, name string) *models.Media {
	t.Helper()
	m := &models.Media{Name: name, Artist: "Various"}
	require.NoError(t, db.Create(m).Error)
	return m
}

// createPost inserts a post whose created_at is offset from a fixed base so
// ordering assertions are deterministic.
func createPost(t *testing.T, db *gorm.DB, userID uint, content string, mediaID *uint, offset time.Duration) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:    userID,
		Content:   content,
		MediaID:   mediaID,
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(offset),
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}
