package ha

import (
	"context"
	"log/slog"
	"time"
)

// Reading is one polled odometer value.
type Reading struct {
	ValueKm float64
	Entity  string
	At      time.Time
}

// PollFunc fetches and records one odometer reading. The poller does not
// care where the value comes from or how it is stored.
type PollFunc func(ctx context.Context) (Reading, error)

// Poller periodically polls the odometer and feeds a motion tracker.
// Poll failures are logged and the loop keeps going; a Home Assistant box
// that is down for an hour should not take the journal down with it.
type Poller struct {
	interval time.Duration
	poll     PollFunc
	tracker  *MotionTracker
	log      *slog.Logger
}

// NewPoller creates a poller. The motion tracker is created internally and
// transitions are logged at info level.
func NewPoller(interval time.Duration, poll PollFunc, log *slog.Logger) *Poller {
	p := &Poller{
		interval: interval,
		poll:     poll,
		log:      log,
	}
	p.tracker = NewMotionTracker(func(from, to string) {
		log.Info("vehicle motion changed", "from", from, "to", to)
	})
	return p
}

// Run polls until ctx is cancelled. It blocks; run it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("odometer poller started", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("odometer poller stopped")
			return
		case <-ticker.C:
			reading, err := p.poll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				p.log.Error("odometer poll failed", "error", err)
				continue
			}
			p.log.Debug("odometer polled", "entity", reading.Entity, "value_km", reading.ValueKm)
			p.tracker.Observe(reading.ValueKm, reading.At)
		}
	}
}
