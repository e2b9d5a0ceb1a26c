package ha

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// Motion states and events.
const (
	StateParked  = "parked"
	StateDriving = "driving"

	eventStartDriving = "start_driving"
	eventStopDriving  = "stop_driving"
)

// minMovementKm is the odometer delta below which two consecutive readings
// count as standing still. Polled odometers jitter by fractions of a km.
const minMovementKm = 0.5

// MotionTracker derives a parked/driving state from consecutive odometer
// readings. It is advisory telemetry for logs; trip records never depend
// on it.
type MotionTracker struct {
	mu       sync.Mutex
	fsm      *fsm.FSM
	lastKm   float64
	lastAt   time.Time
	seeded   bool
	onChange func(from, to string)
}

// NewMotionTracker creates a tracker starting in the parked state.
// onChange fires on every transition; nil is allowed.
func NewMotionTracker(onChange func(from, to string)) *MotionTracker {
	t := &MotionTracker{onChange: onChange}

	t.fsm = fsm.NewFSM(
		StateParked,
		fsm.Events{
			{Name: eventStartDriving, Src: []string{StateParked}, Dst: StateDriving},
			{Name: eventStopDriving, Src: []string{StateDriving}, Dst: StateParked},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				if t.onChange != nil && e.Src != e.Dst {
					t.onChange(e.Src, e.Dst)
				}
			},
		},
	)

	return t
}

// Current returns the tracker's state.
func (t *MotionTracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fsm.Current()
}

// Observe feeds one odometer reading. The first reading only seeds the
// baseline; after that, movement above minMovementKm flips to driving and a
// still reading flips back to parked.
func (t *MotionTracker) Observe(valueKm float64, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seeded {
		t.lastKm, t.lastAt, t.seeded = valueKm, at, true
		return
	}

	moved := valueKm-t.lastKm >= minMovementKm
	t.lastKm, t.lastAt = valueKm, at

	event := eventStopDriving
	if moved {
		event = eventStartDriving
	}
	if t.fsm.Can(event) {
		// The event is valid from the current state; Event only errors on
		// unknown or disallowed transitions.
		_ = t.fsm.Event(context.Background(), event)
	}
}
