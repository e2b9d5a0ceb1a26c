package domain

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open time range [Start, End). A nil End models a trip in
// progress and is treated as extending to +infinity. Half-open semantics make
// touching intervals (one ending exactly when the next starts) non-conflicting.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// Conflicts reports whether two intervals for the same (user, vehicle) pair
// share any instant.
//
// Four cases, by open-ness:
//   - both open: always a conflict (two unbounded intervals), which is also
//     how the one-active-trip rule surfaces in interval terms;
//   - candidate open, other closed: conflict iff the other ends after the
//     candidate starts;
//   - candidate closed, other open: conflict iff the other starts before the
//     candidate ends;
//   - both closed: standard half-open intersection.
//
// A zero-duration candidate (Start == End) is empty and never conflicts;
// rejecting ended_at <= started_at is separate validation.
func (iv Interval) Conflicts(other Interval) bool {
	switch {
	case iv.End == nil && other.End == nil:
		return true
	case iv.End == nil:
		return other.End.After(iv.Start)
	case other.End == nil:
		return other.Start.Before(*iv.End)
	default:
		return iv.Start.Before(*other.End) && other.Start.Before(*iv.End)
	}
}

// ConflictsAny reports whether the candidate interval conflicts with any of
// the given trips, skipping the trip identified by excludeID so an update can
// be re-validated against all other trips without self-conflicting. Pass
// uuid.Nil to exclude nothing.
func ConflictsAny(candidate Interval, trips []Trip, excludeID uuid.UUID) bool {
	for _, t := range trips {
		if excludeID != uuid.Nil && t.ID == excludeID {
			continue
		}
		if candidate.Conflicts(t.Interval()) {
			return true
		}
	}
	return false
}
