package ha_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mlindvall/korjournal/internal/ha"
)

func TestMotionTracker_StartsParked(t *testing.T) {
	tracker := ha.NewMotionTracker(nil)
	assert.Equal(t, ha.StateParked, tracker.Current())
}

func TestMotionTracker_FirstReadingOnlySeeds(t *testing.T) {
	tracker := ha.NewMotionTracker(nil)
	tracker.Observe(12000, time.Now())
	assert.Equal(t, ha.StateParked, tracker.Current())
}

func TestMotionTracker_MovementFlipsToDriving(t *testing.T) {
	var transitions []string
	tracker := ha.NewMotionTracker(func(from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	now := time.Now()
	tracker.Observe(12000, now)
	tracker.Observe(12003, now.Add(time.Minute))

	assert.Equal(t, ha.StateDriving, tracker.Current())
	assert.Equal(t, []string{"parked->driving"}, transitions)
}

func TestMotionTracker_JitterStaysParked(t *testing.T) {
	tracker := ha.NewMotionTracker(nil)

	now := time.Now()
	tracker.Observe(12000, now)
	tracker.Observe(12000.2, now.Add(time.Minute))

	assert.Equal(t, ha.StateParked, tracker.Current())
}

func TestMotionTracker_StillReadingFlipsBackToParked(t *testing.T) {
	var transitions []string
	tracker := ha.NewMotionTracker(func(from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	now := time.Now()
	tracker.Observe(12000, now)
	tracker.Observe(12005, now.Add(time.Minute))
	tracker.Observe(12005.1, now.Add(2*time.Minute))

	assert.Equal(t, ha.StateParked, tracker.Current())
	assert.Equal(t, []string{"parked->driving", "driving->parked"}, transitions)
}

func TestMotionTracker_RepeatedMovementStaysDriving(t *testing.T) {
	count := 0
	tracker := ha.NewMotionTracker(func(_, _ string) { count++ })

	now := time.Now()
	tracker.Observe(12000, now)
	tracker.Observe(12005, now.Add(time.Minute))
	tracker.Observe(12010, now.Add(2*time.Minute))
	tracker.Observe(12015, now.Add(3*time.Minute))

	assert.Equal(t, ha.StateDriving, tracker.Current())
	assert.Equal(t, 1, count, "repeated movement must not re-fire the transition")
}
