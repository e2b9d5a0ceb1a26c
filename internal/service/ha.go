package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/ha"
	"github.com/mlindvall/korjournal/internal/repo"
)

// HAClient is the slice of the Home Assistant client the service uses,
// split out so tests can substitute a fake.
type HAClient interface {
	GetState(ctx context.Context, entityID string) (ha.State, error)
	CallService(ctx context.Context, domain, service string, data json.RawMessage) error
}

// ClientFactory builds a Home Assistant client from resolved settings.
// Production wiring passes ha.NewClient with the configured TLS options.
type ClientFactory func(baseURL, token string) HAClient

// HAService polls the vehicle odometer through Home Assistant and records
// the readings as snapshots. Settings resolve per user, falling back to the
// server-wide environment values field by field.
type HAService struct {
	settings  repo.SettingsRepo
	vehicles  repo.VehicleRepo
	snapshots repo.SnapshotRepo
	fallback  domain.HASettings
	newClient ClientFactory

	// refreshWait is how long a refresh gives the integration to fetch new
	// data from the car before polling the entity.
	refreshWait time.Duration
	now         func() time.Time
}

// HAOption configures an HAService.
type HAOption func(*HAService)

// WithRefreshWait overrides the pause between the force-update call and the
// follow-up poll.
func WithRefreshWait(d time.Duration) HAOption {
	return func(s *HAService) { s.refreshWait = d }
}

// NewHAService constructs an HAService. fallback carries the server-wide
// HA_* environment settings.
func NewHAService(settings repo.SettingsRepo, vehicles repo.VehicleRepo, snapshots repo.SnapshotRepo, fallback domain.HASettings, newClient ClientFactory, opts ...HAOption) *HAService {
	s := &HAService{
		settings:    settings,
		vehicles:    vehicles,
		snapshots:   snapshots,
		fallback:    fallback,
		newClient:   newClient,
		refreshWait: 5 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Poll reads the configured odometer entity once. When vehicleReg is
// non-empty the reading is also recorded as an odometer snapshot for that
// vehicle.
func (s *HAService) Poll(ctx context.Context, userID uuid.UUID, vehicleReg string) (domain.OdometerReading, error) {
	resolved, err := s.resolve(ctx, userID)
	if err != nil {
		return domain.OdometerReading{}, fmt.Errorf("service.HAService.Poll: %w", err)
	}

	reading, err := s.poll(ctx, resolved)
	if err != nil {
		return domain.OdometerReading{}, fmt.Errorf("service.HAService.Poll: %w", err)
	}

	if vehicleReg != "" {
		if err := s.record(ctx, vehicleReg, reading); err != nil {
			return domain.OdometerReading{}, fmt.Errorf("service.HAService.Poll: %w", err)
		}
	}

	return reading, nil
}

// Refresh asks the car integration to fetch fresh data, waits briefly, then
// polls. The wait is context-aware so shutdown is not delayed.
func (s *HAService) Refresh(ctx context.Context, userID uuid.UUID, vehicleReg string) (domain.OdometerReading, error) {
	resolved, err := s.resolve(ctx, userID)
	if err != nil {
		return domain.OdometerReading{}, fmt.Errorf("service.HAService.Refresh: %w", err)
	}

	client := s.newClient(resolved.BaseURL, resolved.Token)
	data := json.RawMessage(resolved.ForceData)
	if err := client.CallService(ctx, resolved.ForceDomain, resolved.ForceService, data); err != nil {
		return domain.OdometerReading{}, fmt.Errorf("service.HAService.Refresh: %w", err)
	}

	select {
	case <-ctx.Done():
		return domain.OdometerReading{}, fmt.Errorf("service.HAService.Refresh: %w", ctx.Err())
	case <-time.After(s.refreshWait):
	}

	reading, err := s.poll(ctx, resolved)
	if err != nil {
		return domain.OdometerReading{}, fmt.Errorf("service.HAService.Refresh: %w", err)
	}

	if vehicleReg != "" {
		if err := s.record(ctx, vehicleReg, reading); err != nil {
			return domain.OdometerReading{}, fmt.Errorf("service.HAService.Refresh: %w", err)
		}
	}

	return reading, nil
}

func (s *HAService) poll(ctx context.Context, resolved domain.HASettings) (domain.OdometerReading, error) {
	client := s.newClient(resolved.BaseURL, resolved.Token)

	state, err := client.GetState(ctx, resolved.OdometerEntity)
	if err != nil {
		return domain.OdometerReading{}, err
	}

	value, err := strconv.ParseFloat(state.State, 64)
	if err != nil {
		// "unknown"/"unavailable" while the integration is still starting up.
		return domain.OdometerReading{}, fmt.Errorf("odometer entity %s reports %q, not a number", resolved.OdometerEntity, state.State)
	}

	at := state.LastUpdated
	if at.IsZero() {
		at = s.now().UTC()
	}

	return domain.OdometerReading{ValueKm: value, Entity: state.EntityID, At: at}, nil
}

func (s *HAService) record(ctx context.Context, vehicleReg string, reading domain.OdometerReading) error {
	vehicle, err := s.vehicles.FindOrCreateByReg(ctx, vehicleReg)
	if err != nil {
		return err
	}
	_, err = s.snapshots.Insert(ctx, domain.OdometerSnapshot{
		VehicleID: vehicle.ID,
		At:        reading.At,
		ValueKm:   reading.ValueKm,
		Source:    "ha",
	})
	return err
}

// resolve merges the user's stored settings over the server-wide fallback,
// field by field. uuid.Nil (the background poller) uses the fallback only.
func (s *HAService) resolve(ctx context.Context, userID uuid.UUID) (domain.HASettings, error) {
	resolved := s.fallback

	if userID != uuid.Nil {
		stored, err := s.settings.Get(ctx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.HASettings{}, err
		}
		if err == nil {
			if stored.BaseURL != "" {
				resolved.BaseURL = stored.BaseURL
			}
			if stored.Token != "" {
				resolved.Token = stored.Token
			}
			if stored.OdometerEntity != "" {
				resolved.OdometerEntity = stored.OdometerEntity
			}
			if stored.ForceDomain != "" {
				resolved.ForceDomain = stored.ForceDomain
			}
			if stored.ForceService != "" {
				resolved.ForceService = stored.ForceService
			}
			if stored.ForceData != "" {
				resolved.ForceData = stored.ForceData
			}
		}
	}

	if resolved.BaseURL == "" || resolved.Token == "" {
		return domain.HASettings{}, fmt.Errorf("%w: home assistant base url and token are not configured", domain.ErrValidation)
	}
	if resolved.OdometerEntity == "" {
		return domain.HASettings{}, fmt.Errorf("%w: odometer entity is not configured", domain.ErrValidation)
	}

	return resolved, nil
}
