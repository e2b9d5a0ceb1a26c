package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist or is owned by a different user. The two cases are
// deliberately indistinguishable so a caller can never probe for foreign trips.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field). Handlers should map this to
// HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrOverlap is returned when a candidate trip interval conflicts with an
// existing trip for the same (user, vehicle) pair. Carries no detail beyond
// the fact that a conflicting trip exists. Maps to HTTP 409.
var ErrOverlap = errors.New("overlapping trip for the same vehicle")

// ErrActiveTrip is returned by Start when the (user, vehicle) pair already
// has a trip in progress. Maps to HTTP 409.
var ErrActiveTrip = errors.New("an active trip already exists for this vehicle")

// ErrTripFinished is returned by Finish when the resolved trip already has an
// end time. Maps to HTTP 409.
var ErrTripFinished = errors.New("trip already finished")

// ErrVehicleNotFound is returned by Finish when the given registration matches
// no known vehicle. Maps to HTTP 404.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrNoActiveTrip is returned by Finish when the vehicle exists but has no
// trip in progress. Maps to HTTP 404.
var ErrNoActiveTrip = errors.New("no active trip to finish")

// ErrInvalidInterval is returned when a supplied ended_at is not strictly
// after started_at. Maps to HTTP 422.
var ErrInvalidInterval = errors.New("ended_at must be after started_at")

// ErrMissingSelector is returned by Finish when neither a trip id nor a
// vehicle registration was supplied. Maps to HTTP 422.
var ErrMissingSelector = errors.New("vehicle_reg or trip_id is required")
