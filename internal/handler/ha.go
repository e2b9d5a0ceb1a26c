package handler

import (
	"net/http"
)

// haPoll handles POST /integrations/home-assistant/poll.
// Query parameter vehicle attaches the reading to that vehicle as a snapshot.
func (s *Server) haPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	reading, err := s.ha.Poll(r.Context(), userID, r.URL.Query().Get("vehicle"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// haRefresh handles POST /integrations/home-assistant/refresh.
// Forces the car integration to fetch fresh data before polling.
func (s *Server) haRefresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	reading, err := s.ha.Refresh(r.Context(), userID, r.URL.Query().Get("vehicle"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
