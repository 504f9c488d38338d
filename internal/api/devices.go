package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
	"github.com/nerrad567/fleet-core/internal/fleet"
)

// Business refusals (Success=false) are returned with 200 OK and the same
// body the gRPC service returns. Only transport-level failures, an unknown
// id or malformed input, use an HTTP error status.

// setStatusRequest is the body of PUT /devices/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// initiateActionRequest is the body of POST /devices/{id}/actions.
type initiateActionRequest struct {
	ActionType string `json:"action_type"`
	Parameters string `json:"parameters"`
}

// handleRegisterDevice registers a new device.
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req fleet.RegisterDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := s.service.RegisterDevice(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Success {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// handleGetDevice returns a device snapshot.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.GetDeviceInfo(r.Context(), fleet.GetDeviceInfoRequest{
		DeviceID: chi.URLParam(r, "id"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetDeviceStatus overwrites a device's status.
// The status name is matched case-insensitively.
func (s *Server) handleSetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	var body setStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	st, err := device.ParseStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	resp, err := s.service.SetDeviceStatus(r.Context(), fleet.SetDeviceStatusRequest{
		DeviceID: chi.URLParam(r, "id"),
		Status:   st,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInitiateAction starts an action on a device.
// An empty body selects the default action type.
func (s *Server) handleInitiateAction(w http.ResponseWriter, r *http.Request) {
	var body initiateActionRequest
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := s.service.InitiateDeviceAction(r.Context(), fleet.InitiateDeviceActionRequest{
		DeviceID:   chi.URLParam(r, "id"),
		ActionType: action.Type(body.ActionType),
		Parameters: body.Parameters,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Success {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}
