package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/config"
	"github.com/noah-isme/scholarship-api/internal/database"
	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/handler"
	"github.com/noah-isme/scholarship-api/internal/middleware"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/repository"
	"github.com/noah-isme/scholarship-api/internal/router"
	"github.com/noah-isme/scholarship-api/internal/service"
)

const bcryptCost = 4

type harness struct {
	app *fiber.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.ConnectSQLite(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	issuer := auth.NewIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	users := repository.NewUserRepository(db)
	scholars := repository.NewScholarRepository(db)
	categories := repository.NewCategoryRepository(db)
	activities := repository.NewActivityRepository(db)

	audit := service.NewAuditService(repository.NewAuditLogRepository(db), logger)
	stats := service.NewStatsService(activities, scholars, logger)
	activitySvc := service.NewActivityService(activities, scholars, categories, users, validate, audit, service.NewActivityEventPublisher(nil, nil, ""), service.ActivityServiceOptions{AllowReReview: true}, logger)
	scholarSvc := service.NewScholarService(scholars, stats, validate, audit, bcryptCost, logger)
	categorySvc := service.NewCategoryService(categories, nil, 0, validate, audit, logger)
	authSvc := service.NewAuthService(users, issuer, validate, audit, bcryptCost, logger)
	seedSvc := service.NewSeedService(categories, users, categorySvc, true, "seed-token", bcryptCost, logger)

	created, err := seedSvc.BootstrapAdmin(context.Background(), service.AdminBootstrap{
		Username: "root",
		Email:    "root@example.com",
		Password: "initial-admin-pass",
	})
	require.NoError(t, err)
	require.True(t, created)

	cfg := config.Config{AppName: "Scholarship API", AppEnv: "test"}
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authSvc, logger),
		ScholarHandler:       handler.NewScholarHandler(scholarSvc, stats, activitySvc, logger),
		ActivityHandler:      handler.NewActivityHandler(activitySvc, logger),
		CategoryHandler:      handler.NewCategoryHandler(categorySvc, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activitySvc, logger),
		AdminScholarHandler:  handler.NewAdminScholarHandler(scholarSvc, stats, logger),
		AdminStatsHandler:    handler.NewAdminStatsHandler(stats, logger),
		AuditHandler:         handler.NewAuditHandler(audit, logger),
		SeedHandler:          handler.NewSeedHandler(seedSvc, logger),
		JWTMiddleware:        middleware.JWTProtected(issuer),
	})

	return &harness{app: app}
}

func (h *harness) do(t *testing.T, method, path, token string, payload interface{}) (int, json.RawMessage) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	return resp.StatusCode, envelope.Data
}

func (h *harness) login(t *testing.T, username, password string) dto.TokenResponse {
	t.Helper()
	status, data := h.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, fiber.StatusOK, status)
	var tokens dto.TokenResponse
	require.NoError(t, json.Unmarshal(data, &tokens))
	return tokens
}

func (h *harness) changePassword(t *testing.T, token, current, next string) dto.TokenResponse {
	t.Helper()
	status, data := h.do(t, http.MethodPost, "/api/v1/auth/password", token, dto.ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	require.Equal(t, fiber.StatusOK, status)
	var tokens dto.TokenResponse
	require.NoError(t, json.Unmarshal(data, &tokens))
	require.False(t, tokens.MustChangePassword)
	return tokens
}

func TestRoutesRequireAuthentication(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/v1/admin/stats", "/api/v1/scholar/profile", "/api/v1/categories", "/api/v1/auth/me"} {
		status, _ := h.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, fiber.StatusUnauthorized, status, path)
	}

	status, _ := h.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, fiber.StatusOK, status)
}

func TestTemporaryPasswordMustBeChanged(t *testing.T) {
	h := newHarness(t)

	tokens := h.login(t, "root", "initial-admin-pass")
	require.True(t, tokens.MustChangePassword)

	status, _ := h.do(t, http.MethodGet, "/api/v1/admin/stats", tokens.AccessToken, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, _ = h.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	fresh := h.changePassword(t, tokens.AccessToken, "initial-admin-pass", "rotated-admin-pass")
	status, _ = h.do(t, http.MethodGet, "/api/v1/admin/stats", fresh.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
}

func TestScholarActivityLifecycle(t *testing.T) {
	h := newHarness(t)

	admin := h.changePassword(t, h.login(t, "root", "initial-admin-pass").AccessToken, "initial-admin-pass", "rotated-admin-pass")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed/categories", nil)
	req.Header.Set("X-Seed-Token", "seed-token")
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	hours := 10
	status, data := h.do(t, http.MethodPost, "/api/v1/admin/scholars", admin.AccessToken, dto.ScholarCreateRequest{
		Username:              "ana",
		Email:                 "ana@example.com",
		FirstName:             "Ana",
		LastName:              "Diaz",
		Level:                 "A",
		RequiredHoursPerMonth: &hours,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var created dto.ScholarCreatedResponse
	require.NoError(t, json.Unmarshal(data, &created))
	require.NotEmpty(t, created.TemporaryPassword)

	scholarLogin := h.login(t, "ana", created.TemporaryPassword)
	require.True(t, scholarLogin.MustChangePassword)
	scholar := h.changePassword(t, scholarLogin.AccessToken, created.TemporaryPassword, "ana-own-password")

	status, data = h.do(t, http.MethodGet, "/api/v1/categories", scholar.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var categories []dto.CategoryResponse
	require.NoError(t, json.Unmarshal(data, &categories))
	require.NotEmpty(t, categories)

	today := time.Now().Format(dto.DateLayout)
	categoryID := categories[0].ID
	status, data = h.do(t, http.MethodPost, "/api/v1/activities", scholar.AccessToken, dto.ActivityCreateRequest{
		Description:  "<b>Tutoring</b> math",
		Hours:        3,
		ActivityDate: today,
		CategoryID:   &categoryID,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var activity dto.ActivityResponse
	require.NoError(t, json.Unmarshal(data, &activity))
	require.Equal(t, models.ActivityStatusPending, activity.Status)
	require.Equal(t, "Tutoring math", activity.Description)

	status, _ = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/activities/%d/approve", activity.ID), scholar.AccessToken, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, data = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/activities/%d/approve", activity.ID), admin.AccessToken, dto.ActivityReviewRequest{Comment: "thanks"})
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &activity))
	require.Equal(t, models.ActivityStatusApproved, activity.Status)
	require.NotNil(t, activity.Reviewer)
	require.Equal(t, "root", activity.Reviewer.Username)

	status, _ = h.do(t, http.MethodPost, "/api/v1/admin/activities/9999/approve", admin.AccessToken, nil)
	require.Equal(t, fiber.StatusNotFound, status)

	status, data = h.do(t, http.MethodGet, "/api/v1/scholar/stats", scholar.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var stats dto.ScholarStatsResponse
	require.NoError(t, json.Unmarshal(data, &stats))
	require.Equal(t, 3.0, stats.TotalHours)
	require.Equal(t, 3.0, stats.CurrentMonthHours)
	require.Equal(t, int64(1), stats.ApprovedActivities)

	status, data = h.do(t, http.MethodGet, "/api/v1/admin/stats", admin.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var fleet dto.FleetStatsResponse
	require.NoError(t, json.Unmarshal(data, &fleet))
	require.Equal(t, int64(1), fleet.TotalScholars)
	require.Equal(t, int64(1), fleet.ActiveThisMonth)
	require.Equal(t, int64(0), fleet.PendingApprovals)

	status, _ = h.do(t, http.MethodGet, "/api/v1/admin/stats", scholar.AccessToken, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, _ = h.do(t, http.MethodGet, "/api/v1/admin/audit-logs?action=activity.reviewed", admin.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status)
}
