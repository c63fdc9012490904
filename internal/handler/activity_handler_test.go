package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/handler"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/service"
)

type mockActivityService struct {
	submitErr    error
	authorizeErr error
	reviewErr    error

	lastUserID   uint
	lastSubmit   dto.ActivityCreateRequest
	lastActor    service.Actor
	lastReviewID uint
	lastDecision models.ActivityStatus
	lastComment  string
	lastLimit    int
	reviewCalls  int
	listed       []dto.ActivityResponse
}

func (m *mockActivityService) Submit(_ context.Context, userID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	m.lastUserID = userID
	m.lastSubmit = payload
	if m.submitErr != nil {
		return dto.ActivityResponse{}, m.submitErr
	}
	return dto.ActivityResponse{
		ID:           11,
		ScholarID:    2,
		Description:  payload.Description,
		Hours:        payload.Hours,
		ActivityDate: payload.ActivityDate,
		Status:       models.ActivityStatusPending,
	}, nil
}

func (m *mockActivityService) AuthorizeReviewer(_ context.Context, actor service.Actor) (service.Reviewer, error) {
	m.lastActor = actor
	if m.authorizeErr != nil {
		return service.Reviewer{}, m.authorizeErr
	}
	return service.Reviewer{}, nil
}

func (m *mockActivityService) Review(_ context.Context, activityID uint, decision models.ActivityStatus, _ service.Reviewer, payload dto.ActivityReviewRequest) (dto.ActivityResponse, error) {
	m.reviewCalls++
	m.lastReviewID = activityID
	m.lastDecision = decision
	m.lastComment = payload.Comment
	if m.reviewErr != nil {
		return dto.ActivityResponse{}, m.reviewErr
	}
	comment := payload.Comment
	return dto.ActivityResponse{ID: activityID, Status: decision, ReviewComment: &comment}, nil
}

func (m *mockActivityService) ListForUser(_ context.Context, userID uint, limit int) ([]dto.ActivityResponse, error) {
	m.lastUserID = userID
	m.lastLimit = limit
	return m.listed, nil
}

func (m *mockActivityService) ListWithDetails(_ context.Context, limit int) ([]dto.ActivityResponse, error) {
	m.lastLimit = limit
	return m.listed, nil
}

func newActivityApp(svc service.ActivityService) *fiber.App {
	app := fiber.New()
	handler.NewActivityHandler(svc, zerolog.Nop()).Register(app.Group("/activities", asUser(5, models.RoleScholar)))
	return app
}

func TestActivityHandler_SubmitCreatesPendingActivity(t *testing.T) {
	svc := &mockActivityService{}
	app := newActivityApp(svc)

	payload := dto.ActivityCreateRequest{
		Description:  "Tutoring",
		Hours:        2.5,
		ActivityDate: "2024-03-10",
		CategoryID:   uintPtr(1),
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/activities", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    dto.ActivityResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, models.ActivityStatusPending, response.Data.Status)
	require.Equal(t, uint(5), svc.lastUserID)
	require.Equal(t, 2.5, svc.lastSubmit.Hours)
	require.NotNil(t, svc.lastSubmit.CategoryID)
}

func TestActivityHandler_SubmitValidationDetails(t *testing.T) {
	payload := dto.ActivityCreateRequest{Description: "x", Hours: -1, ActivityDate: "2024-03-10"}
	validationErr := validator.New().Struct(payload)
	require.Error(t, validationErr)

	app := newActivityApp(&mockActivityService{submitErr: validationErr})
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/activities", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response envelope
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Equal(t, "validation failed", response.Message)
	require.Equal(t, "gte=0", response.Details["hours"])
}

func TestActivityHandler_SubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unknown category", err: service.ErrCategoryNotFound, status: fiber.StatusBadRequest},
		{name: "no scholar profile", err: service.ErrScholarNotFound, status: fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newActivityApp(&mockActivityService{submitErr: tc.err})
			payload := dto.ActivityCreateRequest{Description: "Tutoring", Hours: 1, ActivityDate: "2024-03-10"}
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/activities", payload))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestActivityHandler_SubmitRejectsMalformedBody(t *testing.T) {
	svc := &mockActivityService{}
	app := newActivityApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.lastUserID)
}
