package domain

import (
	"time"

	"github.com/google/uuid"
)

// HASettings holds a user's Home Assistant connection details. Empty fields
// fall back to the server-wide values from the environment. The token is
// write-only through the API: responses only expose whether one is set.
type HASettings struct {
	UserID         uuid.UUID `json:"-"`
	BaseURL        string    `json:"ha_base_url,omitempty"`
	Token          string    `json:"-"`
	OdometerEntity string    `json:"ha_odometer_entity,omitempty"`
	ForceDomain    string    `json:"force_domain,omitempty"`
	ForceService   string    `json:"force_service,omitempty"`
	ForceData      string    `json:"-"` // raw JSON payload for the force-update service call
	UpdatedAt      time.Time `json:"-"`
}

// OdometerReading is the result of one Home Assistant poll.
type OdometerReading struct {
	ValueKm float64   `json:"value_km"`
	Entity  string    `json:"entity"`
	At      time.Time `json:"at"`
}
