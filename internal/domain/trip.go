// Package domain contains the core data types and pure business rules for the
// Körjournal API. This package has no dependencies beyond uuid and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents one vehicle usage interval for one user.
// A trip with a nil EndedAt is active: the vehicle is currently in use.
// A trip belongs exclusively to the user who created it.
type Trip struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	VehicleID uuid.UUID `json:"-"`

	// VehicleReg is a read-only projection of the owning vehicle's
	// registration, populated by repo queries that join vehicles.
	VehicleReg string `json:"vehicle_reg"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"` // nil while the trip is in progress

	StartOdometerKm *float64 `json:"start_odometer_km"`
	EndOdometerKm   *float64 `json:"end_odometer_km"`
	DistanceKm      *float64 `json:"distance_km"`

	Purpose      string `json:"purpose,omitempty"`
	Business     bool   `json:"business"`
	DriverName   string `json:"driver_name,omitempty"`
	StartAddress string `json:"start_address,omitempty"`
	EndAddress   string `json:"end_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the trip is still in progress.
func (t Trip) Active() bool { return t.EndedAt == nil }

// Interval returns the trip's half-open time interval.
func (t Trip) Interval() Interval { return Interval{Start: t.StartedAt, End: t.EndedAt} }

// StartTrip is the input for starting a new active trip.
// StartedAt defaults to the current time when nil.
type StartTrip struct {
	VehicleReg      string
	StartedAt       *time.Time
	StartOdometerKm *float64
	Purpose         string
	Business        bool
	DriverName      string
	StartAddress    string
	EndAddress      string
}

// FinishTrip is the input for closing an active trip. Exactly one of TripID
// or VehicleReg must resolve the target. EndedAt defaults to the current time
// when nil. Optional fields overwrite the stored trip only when supplied,
// except DriverName which never overwrites an existing value.
type FinishTrip struct {
	TripID        *uuid.UUID
	VehicleReg    string
	EndedAt       *time.Time
	EndOdometerKm *float64
	DistanceKm    *float64
	Purpose       *string
	Business      *bool
	DriverName    *string
	EndAddress    *string
}

// TripInput is the full payload for Create and Update. Update treats it as a
// complete replacement of all fields except DistanceKm, which is preserved
// when neither an explicit value nor an odometer delta is available.
type TripInput struct {
	VehicleReg      string
	StartedAt       time.Time
	EndedAt         *time.Time
	StartOdometerKm *float64
	EndOdometerKm   *float64
	DistanceKm      *float64
	Purpose         string
	Business        bool
	DriverName      string
	StartAddress    string
	EndAddress      string
}

// TripFilter narrows List results.
type TripFilter struct {
	// VehicleReg limits results to one vehicle when non-empty.
	VehicleReg string
	// IncludeActive controls whether trips without an end time are returned.
	IncludeActive bool
}
