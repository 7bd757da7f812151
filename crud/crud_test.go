package crud

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chirper/domain"
)

// newTestDB opens a fresh in-memory sqlite database, migrated to the full
// schema. Each test gets its own database, named after the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		domain.User{},
		domain.Follow{},
		domain.Post{},
		domain.Like{},
		domain.Comment{},
		domain.Hashtag{},
		domain.Image{},
	)
	require.NoError(t, err)
	return db
}

// createTestUser registers a user through the real service so the password
// chain runs the same way it does in production.
func createTestUser(t *testing.T, us *UserService, handle, nickname string) *domain.User {
	t.Helper()
	user := &domain.User{
		Handle:   handle,
		Nickname: nickname,
		Password: "correct horse battery staple",
	}
	require.NoError(t, us.Create(context.Background(), user))
	return user
}
