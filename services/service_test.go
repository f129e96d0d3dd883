package services

import (
	"testing"
	"time"

	"github.com/inkwell/blog-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Keep the pool on a single connection so every query sees the same
	// in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Post{},
		&models.MediaItem{}, &models.Comment{}, &models.Rating{},
	))
	return db
}

func seedPost(t *testing.T, db *gorm.DB, post models.Post) models.Post {
	t.Helper()
	if post.Title == "" {
		post.Title = "untitled"
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}
