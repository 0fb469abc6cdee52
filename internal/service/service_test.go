package service

import (
	"fmt"
	"strings"
	"testing"

	"docflow/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database and migrates the
// full schema. Each test gets its own database name so parallel tests
// never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Document{},
		&model.DocumentItem{},
		&model.Project{},
		&model.CostCenter{},
		&model.FileRecord{},
		&model.AuditLog{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
