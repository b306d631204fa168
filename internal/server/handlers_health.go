package server

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.app.Health(r.Context())
	status := http.StatusOK
	if health.Services["database"] == "down" {
		status = http.StatusServiceUnavailable
	}
	writeData(w, status, health)
}
