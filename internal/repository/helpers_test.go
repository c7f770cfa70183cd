package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-app/internal/model"
)

// createTestDB opens a fresh SQLite file in a temp dir with a mock clock.
func createTestDB(t *testing.T) (*gorm.DB, *clock.Mock) {
	t.Helper()

	clk := clock.NewMock()
	clk.Add(20000 * 24 * time.Hour)

	db, err := NewDB(Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
		Clock:  clk,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db, clk
}

// seedUser inserts a user for the given external subject.
func seedUser(t *testing.T, db *gorm.DB, externalID string) model.User {
	t.Helper()
	user := model.User{ExternalID: externalID, Username: externalID, Email: externalID + "@example.com"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &user))
	return user
}

// seedTask creates a task with tags through the repositories and advances the clock.
func seedTask(t *testing.T, db *gorm.DB, clk *clock.Mock, owner uuid.UUID, title string, categoryID *uuid.UUID, tagNames ...string) model.TaskDetails {
	t.Helper()
	ctx := context.Background()

	tags, err := NewTagRepository(db).GetOrCreateMany(ctx, owner, tagNames)
	require.NoError(t, err)

	task := model.Task{UserID: owner, Title: title, CategoryID: categoryID, Priority: model.PriorityMedium}
	created, err := NewTaskRepository(db).Create(ctx, &task, tags)
	require.NoError(t, err)

	clk.Add(time.Minute)
	return *created
}
