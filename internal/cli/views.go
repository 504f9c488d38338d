package cli

import (
	"github.com/nerrad567/fleet-core/internal/device"
	"github.com/nerrad567/fleet-core/internal/fleet"
)

// Result views carry the tags every output format needs.

type registerView struct {
	DeviceID string `json:"device_id" yaml:"device_id" table:"Device"`
	Success  bool   `json:"success" yaml:"success" table:"Success"`
	Message  string `json:"message" yaml:"message" table:"Message"`
}

type deviceView struct {
	ID              string `json:"id" yaml:"id" table:"Device"`
	FirmwareVersion string `json:"firmware_version" yaml:"firmware_version" table:"Version"`
	Status          string `json:"status" yaml:"status" table:"Status"`
}

func newDeviceView(d device.Device) deviceView {
	status := string(d.Status)
	if status == "" {
		status = string(device.StatusUnknown)
	}
	return deviceView{ID: d.ID, FirmwareVersion: d.FirmwareVersion, Status: status}
}

type setStatusView struct {
	DeviceID string `json:"device_id" yaml:"device_id" table:"Device"`
	Status   string `json:"status" yaml:"status" table:"Status"`
	Success  bool   `json:"success" yaml:"success" table:"Success"`
}

type updateView struct {
	DeviceID string `json:"device_id" yaml:"device_id" table:"Device"`
	ActionID string `json:"action_id" yaml:"action_id" table:"Action ID"`
	Success  bool   `json:"success" yaml:"success" table:"Success"`
	Message  string `json:"message" yaml:"message" table:"Message"`
}

type actionView struct {
	ActionID string `json:"action_id" yaml:"action_id" table:"Action"`
	Status   string `json:"status" yaml:"status" table:"Status"`
	Details  string `json:"details" yaml:"details" table:"Details"`
}

func newActionView(resp fleet.GetDeviceActionStatusResponse) actionView {
	return actionView{ActionID: resp.ActionID, Status: string(resp.Status), Details: resp.Details}
}
