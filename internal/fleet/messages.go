package fleet

import (
	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
)

// Request and response types for the five service operations.
//
// Field names follow the DeviceManagement wire schema (snake_case JSON) so
// the same structs are encoded by both the gRPC codec and the REST API.

// RegisterDeviceRequest registers a new device.
type RegisterDeviceRequest struct {
	DeviceID               string `json:"device_id"`
	InitialFirmwareVersion string `json:"initial_firmware_version"`
}

// RegisterDeviceResponse reports the business outcome of a registration.
type RegisterDeviceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SetDeviceStatusRequest overwrites a device's status.
type SetDeviceStatusRequest struct {
	DeviceID string        `json:"device_id"`
	Status   device.Status `json:"status"`
}

// SetDeviceStatusResponse acknowledges a status update.
type SetDeviceStatusResponse struct {
	Success bool `json:"success"`
}

// GetDeviceInfoRequest looks up a device.
type GetDeviceInfoRequest struct {
	DeviceID string `json:"device_id"`
}

// GetDeviceInfoResponse carries a device snapshot.
type GetDeviceInfoResponse struct {
	Device device.Device `json:"device"`
}

// InitiateDeviceActionRequest starts an asynchronous action on a device.
// ActionType and Parameters are informational; they are logged and
// published with events but do not change what the executor does.
type InitiateDeviceActionRequest struct {
	DeviceID   string      `json:"device_id"`
	ActionType action.Type `json:"action_type,omitempty"`
	Parameters string      `json:"parameters,omitempty"`
}

// InitiateDeviceActionResponse returns the id to poll with GetDeviceActionStatus.
type InitiateDeviceActionResponse struct {
	ActionID string `json:"action_id"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

// GetDeviceActionStatusRequest looks up an action.
type GetDeviceActionStatusRequest struct {
	ActionID string `json:"action_id"`
}

// GetDeviceActionStatusResponse carries an action snapshot.
type GetDeviceActionStatusResponse struct {
	ActionID string        `json:"action_id"`
	Status   action.Status `json:"status"`
	Details  string        `json:"details"`
}
