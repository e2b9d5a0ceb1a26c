package handler

import (
	"net/http"
)

// healthz handles GET /healthz.
// Returns 200 {"status":"ok"} when the server and its database are reachable,
// 503 otherwise. The route sits outside the auth middleware so load balancers
// can probe it without credentials.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "reason": "database unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
