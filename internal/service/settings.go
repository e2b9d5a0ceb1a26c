package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/repo"
)

// SettingsService manages per-user Home Assistant settings. The token is
// write-only: reads return whether one is stored, never the value.
type SettingsService struct {
	settings repo.SettingsRepo
}

// NewSettingsService constructs a SettingsService backed by the provided repo.
func NewSettingsService(settings repo.SettingsRepo) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the user's stored settings. A user who never saved any gets
// the zero value rather than an error.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (domain.HASettings, error) {
	stored, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.HASettings{UserID: userID}, nil
		}
		return domain.HASettings{}, fmt.Errorf("service.SettingsService.Get: %w", err)
	}
	return stored, nil
}

// Update replaces the user's settings. An empty incoming token means
// "keep the stored one"; there is no other way to express no-change for a
// field the API never echoes back.
func (s *SettingsService) Update(ctx context.Context, userID uuid.UUID, input domain.HASettings) (domain.HASettings, error) {
	input.UserID = userID

	if input.Token == "" {
		stored, err := s.settings.Get(ctx, userID)
		if err == nil {
			input.Token = stored.Token
		} else if !errors.Is(err, domain.ErrNotFound) {
			return domain.HASettings{}, fmt.Errorf("service.SettingsService.Update: %w", err)
		}
	}

	saved, err := s.settings.Upsert(ctx, input)
	if err != nil {
		return domain.HASettings{}, fmt.Errorf("service.SettingsService.Update: %w", err)
	}
	return saved, nil
}
