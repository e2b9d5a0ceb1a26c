package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is identified by its registration string. Vehicles are created
// lazily on first reference from a trip; there is no explicit registration
// step. The only invariant is uniqueness of RegNo.
type Vehicle struct {
	ID        uuid.UUID `json:"id"`
	RegNo     string    `json:"reg_no"`
	Make      string    `json:"make,omitempty"`
	Model     string    `json:"model,omitempty"`
	Year      *int      `json:"year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OdometerSnapshot is one odometer reading for a vehicle at a point in time.
// Snapshots are advisory telemetry (typically from the Home Assistant poller)
// and are never subject to the trip overlap invariant.
type OdometerSnapshot struct {
	ID        uuid.UUID `json:"id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	At        time.Time `json:"at"`
	ValueKm   float64   `json:"value_km"`
	Source    string    `json:"source"` // e.g. "ha", "manual"
}
