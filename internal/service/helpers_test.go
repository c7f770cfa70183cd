package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-app/internal/model"
	"todo-app/internal/repository"
)

type testEnv struct {
	db    *gorm.DB
	clock *clock.Mock

	users      *repository.UserRepository
	tasks      *repository.TaskRepository
	tags       *repository.TagRepository
	categories *repository.CategoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewMock()
	clk.Add(20000 * 24 * time.Hour)

	db, err := repository.NewDB(repository.Options{
		Driver: repository.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
		Clock:  clk,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		db:         db,
		clock:      clk,
		users:      repository.NewUserRepository(db),
		tasks:      repository.NewTaskRepository(db),
		tags:       repository.NewTagRepository(db),
		categories: repository.NewCategoryRepository(db),
	}
}

func (e *testEnv) user(t *testing.T, subject string) model.User {
	t.Helper()
	u := model.User{ExternalID: subject, Username: subject, Email: subject + "@example.com"}
	require.NoError(t, e.users.Create(context.Background(), &u))
	return u
}

func strPtr(s string) *string { return &s }
