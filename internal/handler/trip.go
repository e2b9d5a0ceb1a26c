package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
)

// startTripRequest is the body of POST /trips/start.
type startTripRequest struct {
	VehicleReg      string     `json:"vehicle_reg"`
	StartedAt       *time.Time `json:"started_at"`
	StartOdometerKm *float64   `json:"start_odometer_km"`
	Purpose         string     `json:"purpose"`
	Business        *bool      `json:"business"`
	DriverName      string     `json:"driver_name"`
	StartAddress    string     `json:"start_address"`
	EndAddress      string     `json:"end_address"`
}

// finishTripRequest is the body of POST /trips/finish. One of trip_id or
// vehicle_reg selects the trip to close.
type finishTripRequest struct {
	TripID        *uuid.UUID `json:"trip_id"`
	VehicleReg    string     `json:"vehicle_reg"`
	EndedAt       *time.Time `json:"ended_at"`
	EndOdometerKm *float64   `json:"end_odometer_km"`
	DistanceKm    *float64   `json:"distance_km"`
	Purpose       *string    `json:"purpose"`
	Business      *bool      `json:"business"`
	DriverName    *string    `json:"driver_name"`
	EndAddress    *string    `json:"end_address"`
}

// tripRequest is the full payload of POST /trips and PUT /trips/{tripID}.
type tripRequest struct {
	VehicleReg      string     `json:"vehicle_reg"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	StartOdometerKm *float64   `json:"start_odometer_km"`
	EndOdometerKm   *float64   `json:"end_odometer_km"`
	DistanceKm      *float64   `json:"distance_km"`
	Purpose         string     `json:"purpose"`
	Business        *bool      `json:"business"`
	DriverName      string     `json:"driver_name"`
	StartAddress    string     `json:"start_address"`
	EndAddress      string     `json:"end_address"`
}

// startTrip handles POST /trips/start.
func (s *Server) startTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req startTripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	input := domain.StartTrip{
		VehicleReg:      req.VehicleReg,
		StartedAt:       req.StartedAt,
		StartOdometerKm: req.StartOdometerKm,
		Purpose:         req.Purpose,
		Business:        boolOrDefault(req.Business, true),
		DriverName:      req.DriverName,
		StartAddress:    req.StartAddress,
		EndAddress:      req.EndAddress,
	}

	trip, err := s.trips.Start(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// finishTrip handles POST /trips/finish.
func (s *Server) finishTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req finishTripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	input := domain.FinishTrip{
		TripID:        req.TripID,
		VehicleReg:    req.VehicleReg,
		EndedAt:       req.EndedAt,
		EndOdometerKm: req.EndOdometerKm,
		DistanceKm:    req.DistanceKm,
		Purpose:       req.Purpose,
		Business:      req.Business,
		DriverName:    req.DriverName,
		EndAddress:    req.EndAddress,
	}

	trip, err := s.trips.Finish(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// createTrip handles POST /trips.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	trip, err := s.trips.Create(r.Context(), userID, tripInputFromRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// updateTrip handles PUT /trips/{tripID}.
func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	trip, err := s.trips.Update(r.Context(), userID, id, tripInputFromRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// deleteTrip handles DELETE /trips/{tripID}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	if err := s.trips.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listTrips handles GET /trips.
// Query parameters: vehicle (registration), include_active (default true),
// page, limit.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.TripFilter{
		VehicleReg:    q.Get("vehicle"),
		IncludeActive: q.Get("include_active") != "false",
	}
	page := domain.NewPaginationParams(queryInt(q.Get("page")), queryInt(q.Get("limit")))

	trips, err := s.trips.List(r.Context(), userID, filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// --- mapping helpers --------------------------------------------------------

func tripInputFromRequest(req tripRequest) domain.TripInput {
	return domain.TripInput{
		VehicleReg:      req.VehicleReg,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		StartOdometerKm: req.StartOdometerKm,
		EndOdometerKm:   req.EndOdometerKm,
		DistanceKm:      req.DistanceKm,
		Purpose:         req.Purpose,
		Business:        boolOrDefault(req.Business, true),
		DriverName:      req.DriverName,
		StartAddress:    req.StartAddress,
		EndAddress:      req.EndAddress,
	}
}

// boolOrDefault resolves an optional JSON boolean.
func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// queryInt parses an optional integer query parameter; invalid or missing
// values are treated as absent.
func queryInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
