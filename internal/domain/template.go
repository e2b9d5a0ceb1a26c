package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripTemplate pre-fills recurring trips (commutes, customer visits).
// Templates are per-user and have no interval semantics of their own;
// applying one just seeds a TripInput.
type TripTemplate struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"-"`
	Name                string    `json:"name"`
	DefaultPurpose      string    `json:"default_purpose,omitempty"`
	Business            bool      `json:"business"`
	DefaultDistanceKm   *float64  `json:"default_distance_km"`
	DefaultVehicleReg   string    `json:"default_vehicle_reg,omitempty"`
	DefaultDriverName   string    `json:"default_driver_name,omitempty"`
	DefaultStartAddress string    `json:"default_start_address,omitempty"`
	DefaultEndAddress   string    `json:"default_end_address,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
