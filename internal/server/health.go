package server

import "net/http"

// handleHealth reports liveness plus the vector index's reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	vectors := "ok"
	status := http.StatusOK
	if err := s.vectors.Health(r.Context()); err != nil {
		vectors = err.Error()
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]string{
		"status":  "ok",
		"vectors": vectors,
	})
}
