package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
)

// templateRequest is the body of POST /templates and PUT /templates/{templateID}.
type templateRequest struct {
	Name                string   `json:"name"`
	DefaultPurpose      string   `json:"default_purpose"`
	Business            *bool    `json:"business"`
	DefaultDistanceKm   *float64 `json:"default_distance_km"`
	DefaultVehicleReg   string   `json:"default_vehicle_reg"`
	DefaultDriverName   string   `json:"default_driver_name"`
	DefaultStartAddress string   `json:"default_start_address"`
	DefaultEndAddress   string   `json:"default_end_address"`
}

func (req templateRequest) toDomain() domain.TripTemplate {
	return domain.TripTemplate{
		Name:                req.Name,
		DefaultPurpose:      req.DefaultPurpose,
		Business:            boolOrDefault(req.Business, true),
		DefaultDistanceKm:   req.DefaultDistanceKm,
		DefaultVehicleReg:   req.DefaultVehicleReg,
		DefaultDriverName:   req.DefaultDriverName,
		DefaultStartAddress: req.DefaultStartAddress,
		DefaultEndAddress:   req.DefaultEndAddress,
	}
}

// listTemplates handles GET /templates.
func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	tpls, err := s.templates.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpls)
}

// createTemplate handles POST /templates.
func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.templates.Create(r.Context(), userID, req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// updateTemplate handles PUT /templates/{templateID}.
func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "templateID"))
	if err != nil {
		writeRequestError(w, "invalid template id")
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.templates.Update(r.Context(), userID, id, req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteTemplate handles DELETE /templates/{templateID}.
func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "templateID"))
	if err != nil {
		writeRequestError(w, "invalid template id")
		return
	}

	if err := s.templates.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
