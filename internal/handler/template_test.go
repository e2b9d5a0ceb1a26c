package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/handler"
)

type mockTemplateServicer struct {
	create func(ctx context.Context, userID uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error)
	list   func(ctx context.Context, userID uuid.UUID) ([]domain.TripTemplate, error)
	update func(ctx context.Context, userID, id uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error)
	delete func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockTemplateServicer) Create(ctx context.Context, userID uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error) {
	return m.create(ctx, userID, tpl)
}
func (m *mockTemplateServicer) List(ctx context.Context, userID uuid.UUID) ([]domain.TripTemplate, error) {
	return m.list(ctx, userID)
}
func (m *mockTemplateServicer) Update(ctx context.Context, userID, id uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error) {
	return m.update(ctx, userID, id, tpl)
}
func (m *mockTemplateServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

var _ handler.TemplateServicer = (*mockTemplateServicer)(nil)

func newTemplateRouter(svc handler.TemplateServicer) http.Handler {
	srv := handler.NewServer(nil, nil, svc, nil, nil, nil)
	return srv.Routes()
}

func templateFixture() domain.TripTemplate {
	return domain.TripTemplate{
		ID:                uuid.New(),
		UserID:            testCaller,
		Name:              "Commute",
		DefaultPurpose:    "office commute",
		Business:          true,
		DefaultVehicleReg: "ABC123",
	}
}

func TestCreateTemplate_201(t *testing.T) {
	fixture := templateFixture()
	svc := &mockTemplateServicer{
		create: func(_ context.Context, userID uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error) {
			assert.Equal(t, testCaller, userID)
			assert.Equal(t, "Commute", tpl.Name)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":                "Commute",
		"default_purpose":     "office commute",
		"default_vehicle_reg": "ABC123",
	})
	rec := httptest.NewRecorder()
	newTemplateRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/templates", body))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.TripTemplate
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestCreateTemplate_422_DuplicateName(t *testing.T) {
	svc := &mockTemplateServicer{
		create: func(_ context.Context, _ uuid.UUID, _ domain.TripTemplate) (domain.TripTemplate, error) {
			return domain.TripTemplate{}, fmt.Errorf("repo.TemplateRepo.Create: %w: a template with this name already exists", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{"name": "Commute"})
	rec := httptest.NewRecorder()
	newTemplateRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/templates", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestListTemplates_200(t *testing.T) {
	svc := &mockTemplateServicer{
		list: func(_ context.Context, _ uuid.UUID) ([]domain.TripTemplate, error) {
			return []domain.TripTemplate{templateFixture(), templateFixture()}, nil
		},
	}

	rec := httptest.NewRecorder()
	newTemplateRouter(svc).ServeHTTP(rec, authedRequest(http.MethodGet, "/templates", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.TripTemplate
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestUpdateTemplate_404(t *testing.T) {
	svc := &mockTemplateServicer{
		update: func(_ context.Context, _, _ uuid.UUID, _ domain.TripTemplate) (domain.TripTemplate, error) {
			return domain.TripTemplate{}, fmt.Errorf("service.TemplateService.Update: %w", domain.ErrNotFound)
		},
	}

	body := jsonBody(t, map[string]any{"name": "Commute"})
	rec := httptest.NewRecorder()
	newTemplateRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPut, "/templates/"+uuid.NewString(), body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTemplate_204(t *testing.T) {
	svc := &mockTemplateServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}

	rec := httptest.NewRecorder()
	newTemplateRouter(svc).ServeHTTP(rec, authedRequest(http.MethodDelete, "/templates/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
