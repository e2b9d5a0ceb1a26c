package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mlindvall/korjournal/internal/domain"
)

// SnapshotRepo persists odometer readings collected from external sources.
// Snapshots are append-only telemetry; nothing updates or deletes them.
type SnapshotRepo interface {
	// Insert stores one reading and returns the persisted record.
	Insert(ctx context.Context, snap domain.OdometerSnapshot) (domain.OdometerSnapshot, error)

	// ListByVehicle returns readings for a vehicle, newest first, capped at limit.
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int) ([]domain.OdometerSnapshot, error)
}

// pgSnapshotRepo is the Postgres implementation of SnapshotRepo.
type pgSnapshotRepo struct {
	db db
}

// NewSnapshotRepo constructs a SnapshotRepo backed by the provided db connection.
func NewSnapshotRepo(db db) SnapshotRepo {
	return &pgSnapshotRepo{db: db}
}

func (r *pgSnapshotRepo) Insert(ctx context.Context, snap domain.OdometerSnapshot) (domain.OdometerSnapshot, error) {
	const q = `
		INSERT INTO odometer_snapshots (vehicle_id, at, value_km, source)
		VALUES (@vehicle_id, @at, @value_km, @source)
		RETURNING id, vehicle_id, at, value_km, source`

	args := pgx.NamedArgs{
		"vehicle_id": snap.VehicleID,
		"at":         snap.At,
		"value_km":   snap.ValueKm,
		"source":     snap.Source,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanSnapshot(row)
	if err != nil {
		return domain.OdometerSnapshot{}, fmt.Errorf("repo.SnapshotRepo.Insert: %w", err)
	}
	return result, nil
}

func (r *pgSnapshotRepo) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int) ([]domain.OdometerSnapshot, error) {
	const q = `
		SELECT id, vehicle_id, at, value_km, source
		FROM odometer_snapshots
		WHERE vehicle_id = @vehicle_id
		ORDER BY at DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"vehicle_id": vehicleID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.SnapshotRepo.ListByVehicle: %w", err)
	}
	defer rows.Close()

	var snaps []domain.OdometerSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SnapshotRepo.ListByVehicle: scan: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SnapshotRepo.ListByVehicle: rows: %w", err)
	}

	return snaps, nil
}

func scanSnapshot(s scanner) (domain.OdometerSnapshot, error) {
	var (
		snap      domain.OdometerSnapshot
		id        pgtype.UUID
		vehicleID pgtype.UUID
	)

	err := s.Scan(&id, &vehicleID, &snap.At, &snap.ValueKm, &snap.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OdometerSnapshot{}, domain.ErrNotFound
		}
		return domain.OdometerSnapshot{}, err
	}

	snap.ID = uuid.UUID(id.Bytes)
	snap.VehicleID = uuid.UUID(vehicleID.Bytes)
	return snap, nil
}
