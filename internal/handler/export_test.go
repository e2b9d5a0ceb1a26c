package handler_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/handler"
)

type mockExportServicer struct {
	journal func(ctx context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.JournalRow, error)
}

func (m *mockExportServicer) Journal(ctx context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.JournalRow, error) {
	return m.journal(ctx, userID, filter)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

func newExportRouter(svc handler.ExportServicer) http.Handler {
	srv := handler.NewServer(nil, svc, nil, nil, nil, nil)
	return srv.Routes()
}

func journalRowFixture() domain.JournalRow {
	return domain.JournalRow{
		Year:         2025,
		VehicleReg:   "ABC123",
		Date:         "2025-06-01",
		StartAddress: "Office",
		EndAddress:   "Client HQ",
		StartOdoKm:   "12000.0",
		EndOdoKm:     "12042.5",
		DistanceKm:   "42.5",
		Purpose:      "client visit",
		DriverName:   "Maria",
		Business:     true,
	}
}

func TestExportJournalCSV_200(t *testing.T) {
	var gotFilter domain.JournalFilter
	svc := &mockExportServicer{
		journal: func(_ context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.JournalRow, error) {
			assert.Equal(t, testCaller, userID)
			gotFilter = filter
			return []domain.JournalRow{journalRowFixture()}, nil
		},
	}

	rec := httptest.NewRecorder()
	newExportRouter(svc).ServeHTTP(rec, authedRequest(http.MethodGet, "/exports/journal.csv?vehicle=ABC123&year=2025", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ABC123", gotFilter.VehicleReg)
	assert.Equal(t, 2025, gotFilter.Year)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "journal.csv")

	cr := csv.NewReader(strings.NewReader(rec.Body.String()))
	cr.Comma = ';'
	records, err := cr.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "year", records[0][0])
	assert.Equal(t, "business", records[0][10])

	row := records[1]
	assert.Equal(t, "2025", row[0])
	assert.Equal(t, "ABC123", row[1])
	assert.Equal(t, "2025-06-01", row[2])
	assert.Equal(t, "42.5", row[7])
	assert.Equal(t, "yes", row[10])
}

func TestExportJournalCSV_200_EmptyJournal(t *testing.T) {
	svc := &mockExportServicer{
		journal: func(_ context.Context, _ uuid.UUID, _ domain.JournalFilter) ([]domain.JournalRow, error) {
			return []domain.JournalRow{}, nil
		},
	}

	rec := httptest.NewRecorder()
	newExportRouter(svc).ServeHTTP(rec, authedRequest(http.MethodGet, "/exports/journal.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	// Header row only.
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestExportJournalCSV_PrivateTripRendersNo(t *testing.T) {
	row := journalRowFixture()
	row.Business = false
	svc := &mockExportServicer{
		journal: func(_ context.Context, _ uuid.UUID, _ domain.JournalFilter) ([]domain.JournalRow, error) {
			return []domain.JournalRow{row}, nil
		},
	}

	rec := httptest.NewRecorder()
	newExportRouter(svc).ServeHTTP(rec, authedRequest(http.MethodGet, "/exports/journal.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ";no")
}
