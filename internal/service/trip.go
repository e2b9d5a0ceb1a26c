// Package service contains the business logic for the Körjournal API.
// Services validate inputs, enforce the interval invariants, and orchestrate
// repo calls. No SQL lives here; services depend on repo interfaces, not
// implementations, and every operation takes the calling user's id explicitly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/repo"
)

// TripService implements the trip lifecycle: start, finish, create, update,
// delete, list. Every mutation runs inside one serializable transaction so
// the overlap check and the write cannot be separated by a concurrent writer.
type TripService struct {
	atomic repo.Atomic
	trips  repo.TripRepo
	now    func() time.Time
}

// TripOption configures a TripService.
type TripOption func(*TripService)

// WithClock overrides the time source used for started_at/ended_at defaults.
func WithClock(now func() time.Time) TripOption {
	return func(s *TripService) { s.now = now }
}

// NewTripService constructs a TripService. The trips repo serves reads;
// mutations go through the atomic runner.
func NewTripService(atomic repo.Atomic, trips repo.TripRepo, opts ...TripOption) *TripService {
	s := &TripService{atomic: atomic, trips: trips, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new active trip for the given vehicle registration.
// The vehicle is created on first use. Fails with domain.ErrActiveTrip when
// an active trip already exists for this (user, vehicle), and with
// domain.ErrOverlap when the open-ended interval would overlap a stored trip.
func (s *TripService) Start(ctx context.Context, userID uuid.UUID, input domain.StartTrip) (domain.Trip, error) {
	if strings.TrimSpace(input.VehicleReg) == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w: vehicle_reg is required", domain.ErrValidation)
	}

	startedAt := s.now().UTC()
	if input.StartedAt != nil {
		startedAt = input.StartedAt.UTC()
	}

	var created domain.Trip
	err := s.atomic.Serializable(ctx, func(ctx context.Context, r repo.Repos) error {
		vehicle, err := r.Vehicles.FindOrCreateByReg(ctx, input.VehicleReg)
		if err != nil {
			return err
		}

		if _, err := r.Trips.FindActiveByVehicle(ctx, userID, vehicle.ID); err == nil {
			return domain.ErrActiveTrip
		} else if !isNotFound(err) {
			return err
		}

		existing, err := r.Trips.ListByVehicle(ctx, userID, vehicle.ID)
		if err != nil {
			return err
		}
		candidate := domain.Interval{Start: startedAt}
		if domain.ConflictsAny(candidate, existing, uuid.Nil) {
			return domain.ErrOverlap
		}

		created, err = r.Trips.Create(ctx, domain.Trip{
			UserID:          userID,
			VehicleID:       vehicle.ID,
			StartedAt:       startedAt,
			StartOdometerKm: input.StartOdometerKm,
			Purpose:         input.Purpose,
			Business:        input.Business,
			DriverName:      input.DriverName,
			StartAddress:    input.StartAddress,
			EndAddress:      input.EndAddress,
		})
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}
	return created, nil
}

// Finish closes an active trip. The target is resolved by trip id when given,
// otherwise by vehicle registration (most recently started active trip).
// Optional fields overwrite the stored trip only when supplied; driver_name
// never overwrites an existing value. Distance resolution: explicit value,
// then odometer delta, then whatever was stored before.
func (s *TripService) Finish(ctx context.Context, userID uuid.UUID, input domain.FinishTrip) (domain.Trip, error) {
	if input.TripID == nil && input.VehicleReg == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.Finish: %w", domain.ErrMissingSelector)
	}

	endedAt := s.now().UTC()
	if input.EndedAt != nil {
		endedAt = input.EndedAt.UTC()
	}

	var finished domain.Trip
	err := s.atomic.Serializable(ctx, func(ctx context.Context, r repo.Repos) error {
		trip, err := s.resolveFinishTarget(ctx, r, userID, input)
		if err != nil {
			return err
		}

		if !endedAt.After(trip.StartedAt) {
			return domain.ErrInvalidInterval
		}

		existing, err := r.Trips.ListByVehicle(ctx, userID, trip.VehicleID)
		if err != nil {
			return err
		}
		candidate := domain.Interval{Start: trip.StartedAt, End: &endedAt}
		if domain.ConflictsAny(candidate, existing, trip.ID) {
			return domain.ErrOverlap
		}

		trip.EndedAt = &endedAt
		if input.EndOdometerKm != nil {
			trip.EndOdometerKm = input.EndOdometerKm
		}
		if input.Purpose != nil {
			trip.Purpose = *input.Purpose
		}
		if input.Business != nil {
			trip.Business = *input.Business
		}
		if input.DriverName != nil && trip.DriverName == "" {
			trip.DriverName = *input.DriverName
		}
		if input.EndAddress != nil {
			trip.EndAddress = *input.EndAddress
		}

		switch {
		case input.DistanceKm != nil:
			trip.DistanceKm = input.DistanceKm
		default:
			if delta := domain.OdoDelta(trip.StartOdometerKm, trip.EndOdometerKm); delta != nil {
				trip.DistanceKm = delta
			}
		}

		finished, err = r.Trips.Update(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Finish: %w", err)
	}
	return finished, nil
}

// resolveFinishTarget loads the trip to finish, by id or by vehicle
// registration. Trip-id lookups are owner scoped, so a foreign trip id
// reports domain.ErrNotFound exactly like a missing one.
func (s *TripService) resolveFinishTarget(ctx context.Context, r repo.Repos, userID uuid.UUID, input domain.FinishTrip) (domain.Trip, error) {
	if input.TripID != nil {
		trip, err := r.Trips.GetByID(ctx, userID, *input.TripID)
		if err != nil {
			return domain.Trip{}, err
		}
		if !trip.Active() {
			return domain.Trip{}, domain.ErrTripFinished
		}
		return trip, nil
	}

	vehicle, err := r.Vehicles.GetByReg(ctx, input.VehicleReg)
	if err != nil {
		return domain.Trip{}, err
	}
	trip, err := r.Trips.FindActiveByVehicle(ctx, userID, vehicle.ID)
	if err != nil {
		if isNotFound(err) {
			return domain.Trip{}, domain.ErrNoActiveTrip
		}
		return domain.Trip{}, err
	}
	return trip, nil
}

// Create persists a complete trip record, active or finished, for manual
// after-the-fact entry. Distance falls back to the odometer delta only when
// the trip is finished.
func (s *TripService) Create(ctx context.Context, userID uuid.UUID, input domain.TripInput) (domain.Trip, error) {
	if err := validateTripInput(input); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	var created domain.Trip
	err := s.atomic.Serializable(ctx, func(ctx context.Context, r repo.Repos) error {
		vehicle, err := r.Vehicles.FindOrCreateByReg(ctx, input.VehicleReg)
		if err != nil {
			return err
		}

		existing, err := r.Trips.ListByVehicle(ctx, userID, vehicle.ID)
		if err != nil {
			return err
		}
		candidate := domain.Interval{Start: input.StartedAt, End: input.EndedAt}
		if domain.ConflictsAny(candidate, existing, uuid.Nil) {
			return domain.ErrOverlap
		}

		created, err = r.Trips.Create(ctx, tripFromInput(userID, vehicle.ID, input, nil))
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// Update replaces all mutable fields of an existing trip, including moving it
// to another vehicle. The stored distance survives an update that supplies
// neither an explicit distance nor a resolvable odometer delta.
func (s *TripService) Update(ctx context.Context, userID, id uuid.UUID, input domain.TripInput) (domain.Trip, error) {
	if err := validateTripInput(input); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	var updated domain.Trip
	err := s.atomic.Serializable(ctx, func(ctx context.Context, r repo.Repos) error {
		prior, err := r.Trips.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		vehicle, err := r.Vehicles.FindOrCreateByReg(ctx, input.VehicleReg)
		if err != nil {
			return err
		}

		existing, err := r.Trips.ListByVehicle(ctx, userID, vehicle.ID)
		if err != nil {
			return err
		}
		candidate := domain.Interval{Start: input.StartedAt, End: input.EndedAt}
		if domain.ConflictsAny(candidate, existing, id) {
			return domain.ErrOverlap
		}

		trip := tripFromInput(userID, vehicle.ID, input, prior.DistanceKm)
		trip.ID = id

		updated, err = r.Trips.Update(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a trip. Owner scoped; deleting another user's trip reports
// domain.ErrNotFound.
func (s *TripService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.atomic.Serializable(ctx, func(ctx context.Context, r repo.Repos) error {
		return r.Trips.Delete(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// List returns the user's trips, newest first. Always returns a non-nil
// slice so callers can range and marshal without nil checks.
func (s *TripService) List(ctx context.Context, userID uuid.UUID, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx, userID, filter, page)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// validateTripInput checks the invariants shared by Create and Update.
func validateTripInput(input domain.TripInput) error {
	if strings.TrimSpace(input.VehicleReg) == "" {
		return fmt.Errorf("%w: vehicle_reg is required", domain.ErrValidation)
	}
	if input.StartedAt.IsZero() {
		return fmt.Errorf("%w: started_at is required", domain.ErrValidation)
	}
	if input.EndedAt != nil && !input.EndedAt.After(input.StartedAt) {
		return domain.ErrInvalidInterval
	}
	return nil
}

// tripFromInput builds the trip row for Create and Update. priorDistance is
// the stored distance to preserve on updates; pass nil on create.
func tripFromInput(userID, vehicleID uuid.UUID, input domain.TripInput, priorDistance *float64) domain.Trip {
	distance := input.DistanceKm
	if distance == nil && input.EndedAt != nil {
		distance = domain.OdoDelta(input.StartOdometerKm, input.EndOdometerKm)
	}
	if distance == nil {
		distance = priorDistance
	}

	return domain.Trip{
		UserID:          userID,
		VehicleID:       vehicleID,
		StartedAt:       input.StartedAt.UTC(),
		EndedAt:         input.EndedAt,
		StartOdometerKm: input.StartOdometerKm,
		EndOdometerKm:   input.EndOdometerKm,
		DistanceKm:      distance,
		Purpose:         input.Purpose,
		Business:        input.Business,
		DriverName:      input.DriverName,
		StartAddress:    input.StartAddress,
		EndAddress:      input.EndAddress,
	}
}

// isNotFound treats both trip and vehicle not-found sentinels as absence.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrVehicleNotFound)
}
