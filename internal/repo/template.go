package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mlindvall/korjournal/internal/domain"
)

// TemplateRepo defines the persistence operations for trip templates.
// All operations are scoped by the owning user id.
type TemplateRepo interface {
	// Create inserts a new template. Returns domain.ErrValidation (wrapped)
	// if the user already has a template with the same name.
	Create(ctx context.Context, tpl domain.TripTemplate) (domain.TripTemplate, error)

	// GetByID retrieves a template by primary key, scoped to userID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.TripTemplate, error)

	// List returns the user's templates ordered by name.
	List(ctx context.Context, userID uuid.UUID) ([]domain.TripTemplate, error)

	// Update overwrites the mutable fields of a template.
	// Returns domain.ErrNotFound if it does not exist for tpl.UserID.
	Update(ctx context.Context, tpl domain.TripTemplate) (domain.TripTemplate, error)

	// Delete removes a template by ID, scoped to userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// pgTemplateRepo is the Postgres implementation of TemplateRepo.
type pgTemplateRepo struct {
	db db
}

// NewTemplateRepo constructs a TemplateRepo backed by the provided db connection.
func NewTemplateRepo(db db) TemplateRepo {
	return &pgTemplateRepo{db: db}
}

const templateColumns = `
	id, user_id, name, default_purpose, business, default_distance_km,
	default_vehicle_reg, default_driver_name, default_start_address, default_end_address,
	created_at, updated_at`

func (r *pgTemplateRepo) Create(ctx context.Context, tpl domain.TripTemplate) (domain.TripTemplate, error) {
	const q = `
		INSERT INTO trip_templates (
			user_id, name, default_purpose, business, default_distance_km,
			default_vehicle_reg, default_driver_name, default_start_address, default_end_address
		)
		VALUES (
			@user_id, @name, @default_purpose, @business, @default_distance_km,
			@default_vehicle_reg, @default_driver_name, @default_start_address, @default_end_address
		)
		RETURNING ` + templateColumns

	row := r.db.QueryRow(ctx, q, templateArgs(tpl))
	result, err := scanTemplate(row)
	if err != nil {
		return domain.TripTemplate{}, fmt.Errorf("repo.TemplateRepo.Create: %w", mapTemplateConstraint(err))
	}
	return result, nil
}

func (r *pgTemplateRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.TripTemplate, error) {
	const q = `
		SELECT ` + templateColumns + `
		FROM trip_templates
		WHERE id = @id AND user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	result, err := scanTemplate(row)
	if err != nil {
		return domain.TripTemplate{}, fmt.Errorf("repo.TemplateRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTemplateRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.TripTemplate, error) {
	const q = `
		SELECT ` + templateColumns + `
		FROM trip_templates
		WHERE user_id = @user_id
		ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: %w", err)
	}
	defer rows.Close()

	var tpls []domain.TripTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TemplateRepo.List: scan: %w", err)
		}
		tpls = append(tpls, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: rows: %w", err)
	}

	return tpls, nil
}

func (r *pgTemplateRepo) Update(ctx context.Context, tpl domain.TripTemplate) (domain.TripTemplate, error) {
	const q = `
		UPDATE trip_templates
		SET name                  = @name,
		    default_purpose       = @default_purpose,
		    business              = @business,
		    default_distance_km   = @default_distance_km,
		    default_vehicle_reg   = @default_vehicle_reg,
		    default_driver_name   = @default_driver_name,
		    default_start_address = @default_start_address,
		    default_end_address   = @default_end_address,
		    updated_at            = now()
		WHERE id = @id AND user_id = @user_id
		RETURNING ` + templateColumns

	args := templateArgs(tpl)
	args["id"] = tpl.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTemplate(row)
	if err != nil {
		return domain.TripTemplate{}, fmt.Errorf("repo.TemplateRepo.Update: %w", mapTemplateConstraint(err))
	}
	return result, nil
}

func (r *pgTemplateRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM trip_templates WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TemplateRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TemplateRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func templateArgs(tpl domain.TripTemplate) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_id":               tpl.UserID,
		"name":                  tpl.Name,
		"default_purpose":       tpl.DefaultPurpose,
		"business":              tpl.Business,
		"default_distance_km":   tpl.DefaultDistanceKm,
		"default_vehicle_reg":   tpl.DefaultVehicleReg,
		"default_driver_name":   tpl.DefaultDriverName,
		"default_start_address": tpl.DefaultStartAddress,
		"default_end_address":   tpl.DefaultEndAddress,
	}
}

func scanTemplate(s scanner) (domain.TripTemplate, error) {
	var (
		tpl    domain.TripTemplate
		id     pgtype.UUID
		userID pgtype.UUID
	)

	err := s.Scan(
		&id, &userID, &tpl.Name, &tpl.DefaultPurpose, &tpl.Business, &tpl.DefaultDistanceKm,
		&tpl.DefaultVehicleReg, &tpl.DefaultDriverName, &tpl.DefaultStartAddress, &tpl.DefaultEndAddress,
		&tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripTemplate{}, domain.ErrNotFound
		}
		return domain.TripTemplate{}, err
	}

	tpl.ID = uuid.UUID(id.Bytes)
	tpl.UserID = uuid.UUID(userID.Bytes)
	return tpl, nil
}

func mapTemplateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: a template with this name already exists", domain.ErrValidation)
	}
	return err
}
