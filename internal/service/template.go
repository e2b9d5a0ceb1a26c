package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/repo"
)

// TemplateService implements CRUD for per-user trip templates.
type TemplateService struct {
	templates repo.TemplateRepo
}

// NewTemplateService constructs a TemplateService backed by the provided repo.
func NewTemplateService(templates repo.TemplateRepo) *TemplateService {
	return &TemplateService{templates: templates}
}

// Create validates and persists a new template for the user.
func (s *TemplateService) Create(ctx context.Context, userID uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error) {
	if strings.TrimSpace(tpl.Name) == "" {
		return domain.TripTemplate{}, fmt.Errorf("service.TemplateService.Create: %w: name is required", domain.ErrValidation)
	}
	tpl.UserID = userID

	created, err := s.templates.Create(ctx, tpl)
	if err != nil {
		return domain.TripTemplate{}, fmt.Errorf("service.TemplateService.Create: %w", err)
	}
	return created, nil
}

// List returns the user's templates ordered by name. Always non-nil.
func (s *TemplateService) List(ctx context.Context, userID uuid.UUID) ([]domain.TripTemplate, error) {
	tpls, err := s.templates.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TemplateService.List: %w", err)
	}
	if tpls == nil {
		tpls = []domain.TripTemplate{}
	}
	return tpls, nil
}

// Update replaces a template's fields. Owner scoped.
func (s *TemplateService) Update(ctx context.Context, userID, id uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error) {
	if strings.TrimSpace(tpl.Name) == "" {
		return domain.TripTemplate{}, fmt.Errorf("service.TemplateService.Update: %w: name is required", domain.ErrValidation)
	}
	tpl.ID = id
	tpl.UserID = userID

	updated, err := s.templates.Update(ctx, tpl)
	if err != nil {
		return domain.TripTemplate{}, fmt.Errorf("service.TemplateService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a template. Owner scoped.
func (s *TemplateService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.templates.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.TemplateService.Delete: %w", err)
	}
	return nil
}
