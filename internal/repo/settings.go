package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mlindvall/korjournal/internal/domain"
)

// SettingsRepo persists per-user Home Assistant connection settings.
type SettingsRepo interface {
	// Get returns the user's settings, or domain.ErrNotFound if none were saved.
	Get(ctx context.Context, userID uuid.UUID) (domain.HASettings, error)

	// Upsert inserts or fully replaces the user's settings row.
	Upsert(ctx context.Context, s domain.HASettings) (domain.HASettings, error)
}

// pgSettingsRepo is the Postgres implementation of SettingsRepo.
type pgSettingsRepo struct {
	db db
}

// NewSettingsRepo constructs a SettingsRepo backed by the provided db connection.
func NewSettingsRepo(db db) SettingsRepo {
	return &pgSettingsRepo{db: db}
}

const settingsColumns = `user_id, base_url, token, odometer_entity, force_domain, force_service, force_data, updated_at`

func (r *pgSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (domain.HASettings, error) {
	const q = `
		SELECT ` + settingsColumns + `
		FROM ha_settings
		WHERE user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID})
	result, err := scanSettings(row)
	if err != nil {
		return domain.HASettings{}, fmt.Errorf("repo.SettingsRepo.Get: %w", err)
	}
	return result, nil
}

func (r *pgSettingsRepo) Upsert(ctx context.Context, s domain.HASettings) (domain.HASettings, error) {
	const q = `
		INSERT INTO ha_settings (user_id, base_url, token, odometer_entity, force_domain, force_service, force_data, updated_at)
		VALUES (@user_id, @base_url, @token, @odometer_entity, @force_domain, @force_service, @force_data, now())
		ON CONFLICT (user_id) DO UPDATE
		SET base_url        = EXCLUDED.base_url,
		    token           = EXCLUDED.token,
		    odometer_entity = EXCLUDED.odometer_entity,
		    force_domain    = EXCLUDED.force_domain,
		    force_service   = EXCLUDED.force_service,
		    force_data      = EXCLUDED.force_data,
		    updated_at      = now()
		RETURNING ` + settingsColumns

	args := pgx.NamedArgs{
		"user_id":         s.UserID,
		"base_url":        s.BaseURL,
		"token":           s.Token,
		"odometer_entity": s.OdometerEntity,
		"force_domain":    s.ForceDomain,
		"force_service":   s.ForceService,
		"force_data":      s.ForceData,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSettings(row)
	if err != nil {
		return domain.HASettings{}, fmt.Errorf("repo.SettingsRepo.Upsert: %w", err)
	}
	return result, nil
}

func scanSettings(s scanner) (domain.HASettings, error) {
	var (
		out    domain.HASettings
		userID pgtype.UUID
	)

	err := s.Scan(
		&userID, &out.BaseURL, &out.Token, &out.OdometerEntity,
		&out.ForceDomain, &out.ForceService, &out.ForceData, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HASettings{}, domain.ErrNotFound
		}
		return domain.HASettings{}, err
	}

	out.UserID = uuid.UUID(userID.Bytes)
	return out, nil
}
