package handler

import (
	"net/http"

	"github.com/mlindvall/korjournal/internal/domain"
)

// settingsRequest is the body of PUT /settings. An empty token keeps the
// stored one; there is no way to read a token back out.
type settingsRequest struct {
	BaseURL        string `json:"ha_base_url"`
	Token          string `json:"ha_token"`
	OdometerEntity string `json:"ha_odometer_entity"`
	ForceDomain    string `json:"force_domain"`
	ForceService   string `json:"force_service"`
	ForceData      string `json:"force_data"`
}

// settingsResponse is the projection of stored settings. The token itself
// never leaves the server; only its presence does.
type settingsResponse struct {
	BaseURL        string `json:"ha_base_url"`
	TokenSet       bool   `json:"ha_token_set"`
	OdometerEntity string `json:"ha_odometer_entity"`
	ForceDomain    string `json:"force_domain"`
	ForceService   string `json:"force_service"`
}

func settingsToResponse(s domain.HASettings) settingsResponse {
	return settingsResponse{
		BaseURL:        s.BaseURL,
		TokenSet:       s.Token != "",
		OdometerEntity: s.OdometerEntity,
		ForceDomain:    s.ForceDomain,
		ForceService:   s.ForceService,
	}
}

// getSettings handles GET /settings.
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	stored, err := s.settings.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToResponse(stored))
}

// updateSettings handles PUT /settings.
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeRequestError(w, "invalid request body: "+err.Error())
		return
	}

	saved, err := s.settings.Update(r.Context(), userID, domain.HASettings{
		BaseURL:        req.BaseURL,
		Token:          req.Token,
		OdometerEntity: req.OdometerEntity,
		ForceDomain:    req.ForceDomain,
		ForceService:   req.ForceService,
		ForceData:      req.ForceData,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToResponse(saved))
}
