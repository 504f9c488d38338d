package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

// handleGetAction returns the status of an action.
func (s *Server) handleGetAction(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.GetDeviceActionStatus(r.Context(), fleet.GetDeviceActionStatusRequest{
		ActionID: chi.URLParam(r, "id"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
