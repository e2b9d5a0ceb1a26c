package domain

import "math"

// OdoDelta derives a trip distance from two odometer readings, rounded to one
// decimal place. It returns nil ("unknown") when either reading is absent or
// when end < start, which is treated as a sensor or input error rather than a
// negative distance. An unknown result is a normal outcome, not an error; the
// caller leaves the stored distance unchanged.
func OdoDelta(startOdo, endOdo *float64) *float64 {
	if startOdo == nil || endOdo == nil {
		return nil
	}
	d := *endOdo - *startOdo
	if d < 0 {
		return nil
	}
	d = math.Round(d*10) / 10
	return &d
}
