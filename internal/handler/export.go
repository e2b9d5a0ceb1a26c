package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/mlindvall/korjournal/internal/domain"
)

// journalHeader is the column order of the CSV export.
var journalHeader = []string{
	"year", "vehicle_reg", "date", "start_address", "end_address",
	"start_odometer_km", "end_odometer_km", "distance_km",
	"purpose", "driver_name", "business",
}

// exportJournalCSV handles GET /exports/journal.csv.
// Query parameters: vehicle (registration), year.
// The file is semicolon-delimited; the journals are opened in spreadsheet
// tools configured for European locales.
func (s *Server) exportJournalCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.JournalFilter{VehicleReg: q.Get("vehicle")}
	if y := queryInt(q.Get("year")); y != nil {
		filter.Year = *y
	}

	rows, err := s.exports.Journal(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="journal.csv"`)

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	_ = cw.Write(journalHeader)
	for _, row := range rows {
		business := "no"
		if row.Business {
			business = "yes"
		}
		_ = cw.Write([]string{
			strconv.Itoa(row.Year), row.VehicleReg, row.Date,
			row.StartAddress, row.EndAddress,
			row.StartOdoKm, row.EndOdoKm, row.DistanceKm,
			row.Purpose, row.DriverName, business,
		})
	}
	cw.Flush()
}
