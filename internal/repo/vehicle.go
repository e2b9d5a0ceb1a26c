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

// VehicleRepo defines the persistence operations for Vehicles. Vehicles are
// shared across users (the registration identifies the physical car); trips
// carry the per-user scoping.
type VehicleRepo interface {
	// FindOrCreateByReg returns the vehicle with the given registration,
	// inserting it first if it does not exist. A typo in a registration
	// therefore silently creates a new vehicle record; that is the intended
	// convenience, there is no explicit vehicle-registration step.
	FindOrCreateByReg(ctx context.Context, regNo string) (domain.Vehicle, error)

	// GetByReg retrieves a vehicle by registration.
	// Returns domain.ErrVehicleNotFound if no vehicle with that registration exists.
	GetByReg(ctx context.Context, regNo string) (domain.Vehicle, error)

	// List returns all vehicles ordered by registration.
	List(ctx context.Context) ([]domain.Vehicle, error)
}

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

func (r *pgVehicleRepo) FindOrCreateByReg(ctx context.Context, regNo string) (domain.Vehicle, error) {
	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
	const q = `
		INSERT INTO vehicles (reg_no)
		VALUES (@reg_no)
		ON CONFLICT (reg_no) DO UPDATE SET reg_no = EXCLUDED.reg_no
		RETURNING id, reg_no, make, model, year, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"reg_no": regNo})
	result, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.FindOrCreateByReg: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) GetByReg(ctx context.Context, regNo string) (domain.Vehicle, error) {
	const q = `
		SELECT id, reg_no, make, model, year, created_at
		FROM vehicles
		WHERE reg_no = @reg_no`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"reg_no": regNo})
	result, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrVehicleNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByReg: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	const q = `
		SELECT id, reg_no, make, model, year, created_at
		FROM vehicles
		ORDER BY reg_no`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.List: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: rows: %w", err)
	}

	return vehicles, nil
}

func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v  domain.Vehicle
		id pgtype.UUID
	)

	err := s.Scan(&id, &v.RegNo, &v.Make, &v.Model, &v.Year, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrNotFound
		}
		return domain.Vehicle{}, err
	}

	v.ID = uuid.UUID(id.Bytes)
	return v, nil
}
