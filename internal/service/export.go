package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/repo"
)

// ExportService assembles the flat mileage journal: one row per finished
// trip, chronological, with formatted odometer and distance values.
type ExportService struct {
	trips repo.TripRepo
}

// NewExportService constructs an ExportService backed by the provided TripRepo.
func NewExportService(trips repo.TripRepo) *ExportService {
	return &ExportService{trips: trips}
}

// Journal returns one JournalRow per finished trip matching the filter.
// Active trips never appear in the journal.
func (s *ExportService) Journal(ctx context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.JournalRow, error) {
	trips, err := s.trips.ListForJournal(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Journal: %w", err)
	}

	rows := make([]domain.JournalRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, domain.JournalRow{
			Year:         t.StartedAt.Year(),
			VehicleReg:   t.VehicleReg,
			Date:         t.StartedAt.Format("2006-01-02"),
			StartAddress: t.StartAddress,
			EndAddress:   t.EndAddress,
			StartOdoKm:   formatKm(t.StartOdometerKm),
			EndOdoKm:     formatKm(t.EndOdometerKm),
			DistanceKm:   formatKm(t.DistanceKm),
			Purpose:      t.Purpose,
			DriverName:   t.DriverName,
			Business:     t.Business,
		})
	}
	return rows, nil
}

// formatKm renders an optional kilometre value with one decimal, or "" when
// the value is unknown.
func formatKm(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
