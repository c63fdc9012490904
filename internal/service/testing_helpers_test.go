package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

const testBcryptCost = 4

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type testEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	scholars   repository.ScholarRepository
	categories repository.CategoryRepository
	activities repository.ActivityRepository
	audits     repository.AuditLogRepository
	audit      AuditService
	events     *recordingPublisher
	validate   *validator.Validate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Scholar{}, &models.ActivityCategory{}, &models.Activity{}, &models.AuditLog{}))

	audits := repository.NewAuditLogRepository(db)
	return &testEnv{
		db:         db,
		users:      repository.NewUserRepository(db),
		scholars:   repository.NewScholarRepository(db),
		categories: repository.NewCategoryRepository(db),
		activities: repository.NewActivityRepository(db),
		audits:     audits,
		audit:      NewAuditService(audits, testLogger()),
		events:     &recordingPublisher{},
		validate:   validator.New(),
	}
}

func (e *testEnv) activityService(allowReReview bool) ActivityService {
	return NewActivityService(e.activities, e.scholars, e.categories, e.users, e.validate, e.audit, e.events, ActivityServiceOptions{AllowReReview: allowReReview}, testLogger())
}

func (e *testEnv) seedScholar(t *testing.T, username string, required uint) models.Scholar {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", FirstName: username, Role: models.RoleScholar}
	scholar := models.Scholar{Level: "A", RequiredHoursPerMonth: required}
	require.NoError(t, e.scholars.CreateWithUser(context.Background(), &user, &scholar))
	scholar.User = user
	return scholar
}

func (e *testEnv) seedUser(t *testing.T, username, password, role string, mustChange bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, testBcryptCost)
	require.NoError(t, err)
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: hash, Role: role, MustChangePassword: mustChange}
	require.NoError(t, e.users.Create(context.Background(), &user))
	return user
}

func (e *testEnv) seedActivity(t *testing.T, scholarID uint, hours float64, day time.Time, status models.ActivityStatus) models.Activity {
	t.Helper()
	activity := models.Activity{ScholarID: scholarID, Description: "volunteering", Hours: hours, ActivityDate: day, Status: status}
	require.NoError(t, e.activities.Create(context.Background(), &activity))
	return activity
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

func onDate(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
