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

// TripRepo defines the persistence operations for Trips. Every read and write
// is scoped by the owning user id so trips belonging to other users behave
// exactly like missing rows.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by primary key, scoped to userID.
	// Returns domain.ErrNotFound if no such trip exists for that user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)

	// List returns the user's trips ordered by started_at descending,
	// optionally filtered to one vehicle and/or finished trips only.
	List(ctx context.Context, userID uuid.UUID, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, error)

	// ListByVehicle returns every trip for a (user, vehicle) pair. Used by
	// the overlap check; the set is bounded by how much one person can drive
	// one car.
	ListByVehicle(ctx context.Context, userID, vehicleID uuid.UUID) ([]domain.Trip, error)

	// FindActiveByVehicle returns the most recently started trip without an
	// end time for the (user, vehicle) pair, or domain.ErrNotFound.
	FindActiveByVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Trip, error)

	// Update overwrites all mutable fields of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if the trip does not
	// exist for trip.UserID.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID, scoped to userID.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ListForJournal returns the user's finished trips ordered by started_at
	// ascending, optionally filtered by vehicle registration and year.
	ListForJournal(ctx context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool or a transaction from Atomic; in tests
// pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `
	t.id, t.user_id, t.vehicle_id, v.reg_no,
	t.started_at, t.ended_at,
	t.start_odometer_km, t.end_odometer_km, t.distance_km,
	t.purpose, t.business, t.driver_name, t.start_address, t.end_address,
	t.created_at, t.updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO trips (
				user_id, vehicle_id, started_at, ended_at,
				start_odometer_km, end_odometer_km, distance_km,
				purpose, business, driver_name, start_address, end_address
			)
			VALUES (
				@user_id, @vehicle_id, @started_at, @ended_at,
				@start_odometer_km, @end_odometer_km, @distance_km,
				@purpose, @business, @driver_name, @start_address, @end_address
			)
			RETURNING *
		)
		SELECT ` + tripColumns + `
		FROM inserted t
		JOIN vehicles v ON v.id = t.vehicle_id`

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapTripConstraint(err))
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.id = @id AND t.user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) List(ctx context.Context, userID uuid.UUID, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, error) {
	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.user_id = @user_id`
	args := pgx.NamedArgs{
		"user_id": userID,
		"limit":   page.Limit,
		"offset":  page.Offset(),
	}
	if filter.VehicleReg != "" {
		q += ` AND v.reg_no = @reg_no`
		args["reg_no"] = filter.VehicleReg
	}
	if !filter.IncludeActive {
		q += ` AND t.ended_at IS NOT NULL`
	}
	q += `
		ORDER BY t.started_at DESC
		LIMIT @limit OFFSET @offset`

	return r.queryTrips(ctx, "List", q, args)
}

func (r *pgTripRepo) ListByVehicle(ctx context.Context, userID, vehicleID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.user_id = @user_id AND t.vehicle_id = @vehicle_id
		ORDER BY t.started_at`

	return r.queryTrips(ctx, "ListByVehicle", q, pgx.NamedArgs{"user_id": userID, "vehicle_id": vehicleID})
}

func (r *pgTripRepo) FindActiveByVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.user_id = @user_id AND t.vehicle_id = @vehicle_id AND t.ended_at IS NULL
		ORDER BY t.started_at DESC
		LIMIT 1`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "vehicle_id": vehicleID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.FindActiveByVehicle: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH updated AS (
			UPDATE trips
			SET vehicle_id        = @vehicle_id,
			    started_at        = @started_at,
			    ended_at          = @ended_at,
			    start_odometer_km = @start_odometer_km,
			    end_odometer_km   = @end_odometer_km,
			    distance_km       = @distance_km,
			    purpose           = @purpose,
			    business          = @business,
			    driver_name       = @driver_name,
			    start_address     = @start_address,
			    end_address       = @end_address,
			    updated_at        = now()
			WHERE id = @id AND user_id = @user_id
			RETURNING *
		)
		SELECT ` + tripColumns + `
		FROM updated t
		JOIN vehicles v ON v.id = t.vehicle_id`

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", mapTripConstraint(err))
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) ListForJournal(ctx context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.Trip, error) {
	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.user_id = @user_id AND t.ended_at IS NOT NULL`
	args := pgx.NamedArgs{"user_id": userID}
	if filter.VehicleReg != "" {
		q += ` AND v.reg_no = @reg_no`
		args["reg_no"] = filter.VehicleReg
	}
	if filter.Year != 0 {
		q += ` AND date_part('year', t.started_at) = @year`
		args["year"] = filter.Year
	}
	q += `
		ORDER BY t.started_at`

	return r.queryTrips(ctx, "ListForJournal", q, args)
}

func (r *pgTripRepo) queryTrips(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.%s: rows: %w", op, err)
	}

	return trips, nil
}

// tripArgs maps a domain.Trip's mutable fields to named SQL arguments.
// Nil pointers become NULLs.
func tripArgs(trip domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_id":           trip.UserID,
		"vehicle_id":        trip.VehicleID,
		"started_at":        trip.StartedAt,
		"ended_at":          trip.EndedAt,
		"start_odometer_km": trip.StartOdometerKm,
		"end_odometer_km":   trip.EndOdometerKm,
		"distance_km":       trip.DistanceKm,
		"purpose":           trip.Purpose,
		"business":          trip.Business,
		"driver_name":       trip.DriverName,
		"start_address":     trip.StartAddress,
		"end_address":       trip.EndAddress,
	}
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable column conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		userID    pgtype.UUID
		vehicleID pgtype.UUID
	)

	err := s.Scan(
		&id, &userID, &vehicleID, &t.VehicleReg,
		&t.StartedAt, &t.EndedAt,
		&t.StartOdometerKm, &t.EndOdometerKm, &t.DistanceKm,
		&t.Purpose, &t.Business, &t.DriverName, &t.StartAddress, &t.EndAddress,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	t.VehicleID = uuid.UUID(vehicleID.Bytes)
	return t, nil
}

// mapTripConstraint translates the schema-level interval guards into domain
// errors so a race that slips past the serializable check still surfaces as
// the same conflict the service would have reported.
func mapTripConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == "23P01" && pgErr.ConstraintName == "trips_no_overlap":
		return domain.ErrOverlap
	case pgErr.Code == "23505" && pgErr.ConstraintName == "ux_trips_active_per_vehicle":
		return domain.ErrActiveTrip
	}
	return err
}
