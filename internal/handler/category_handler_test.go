package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/handler"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/service"
)

type mockCategoryService struct {
	items      []dto.CategoryResponse
	createErr  error
	deleted    []uint
	lastActor  service.Actor
	invalidate int
}

func (m *mockCategoryService) List(context.Context) ([]dto.CategoryResponse, error) {
	return m.items, nil
}

func (m *mockCategoryService) Create(_ context.Context, payload dto.CategoryCreateRequest, actor service.Actor) (dto.CategoryResponse, error) {
	m.lastActor = actor
	if m.createErr != nil {
		return dto.CategoryResponse{}, m.createErr
	}
	created := dto.CategoryResponse{ID: uint(len(m.items) + 1), Name: payload.Name, Description: payload.Description}
	m.items = append(m.items, created)
	return created, nil
}

func (m *mockCategoryService) Delete(_ context.Context, id uint, actor service.Actor) error {
	m.lastActor = actor
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return service.ErrCategoryNotFound
}

func (m *mockCategoryService) Invalidate(context.Context) {
	m.invalidate++
}

func newCategoryApp(svc service.CategoryService) *fiber.App {
	app := fiber.New()
	h := handler.NewCategoryHandler(svc, zerolog.Nop())
	h.Register(app.Group("/categories", asUser(5, models.RoleScholar)))
	h.RegisterAdmin(app.Group("/admin/categories", asUser(1, models.RoleAdmin)))
	return app
}

func TestCategoryHandler_ListAndCreate(t *testing.T) {
	svc := &mockCategoryService{items: []dto.CategoryResponse{{ID: 1, Name: "Community Service"}}}
	app := newCategoryApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/categories", dto.CategoryCreateRequest{Name: "Tutoring"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(1), svc.lastActor.ID)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/categories", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.CategoryResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 2)
	require.Equal(t, "Tutoring", response.Data[1].Name)
}

func TestCategoryHandler_CreateConflict(t *testing.T) {
	app := newCategoryApp(&mockCategoryService{createErr: service.ErrCategoryConflict})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/categories", dto.CategoryCreateRequest{Name: "Tutoring"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCategoryHandler_Delete(t *testing.T) {
	svc := &mockCategoryService{items: []dto.CategoryResponse{{ID: 1, Name: "Community Service"}}}
	app := newCategoryApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/admin/categories/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []uint{1}, svc.deleted)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/admin/categories/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/admin/categories/x", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
