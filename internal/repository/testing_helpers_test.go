package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Scholar{}, &models.ActivityCategory{}, &models.Activity{}, &models.AuditLog{}))
	return db
}

func seedScholar(t *testing.T, db *gorm.DB, username, first string) models.Scholar {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", FirstName: first, Role: models.RoleScholar}
	require.NoError(t, db.Create(&user).Error)
	scholar := models.Scholar{UserID: user.ID, Level: "A", RequiredHoursPerMonth: 20}
	require.NoError(t, db.Omit("User").Create(&scholar).Error)
	scholar.User = user
	return scholar
}

func seedAdmin(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	admin := models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
