package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the fleet daemon.
const (
	MeasurementActions        = "fleet_actions"
	MeasurementDeviceStatus   = "fleet_device_status"
	MeasurementRegistrations  = "fleet_device_registrations"
	measurementTagDeviceID    = "device_id"
	measurementTagActionType  = "action_type"
	measurementTagActionPhase = "phase"
)

// WriteActionStarted records that an action was initiated on a device.
func (c *Client) WriteActionStarted(deviceID, actionID, actionType string, at time.Time) {
	c.WritePointWithTime(MeasurementActions,
		map[string]string{
			measurementTagDeviceID:    deviceID,
			measurementTagActionType:  actionType,
			measurementTagActionPhase: "started",
		},
		map[string]interface{}{
			"action_id": actionID,
			"count":     1,
		},
		at,
	)
}

// WriteActionCompleted records a finished action and how long it ran.
//
// Example:
//
//	client.WriteActionCompleted("sensor-01", "ACTION-4821", "SOFTWARE_UPDATE", 10*time.Second, time.Now())
func (c *Client) WriteActionCompleted(deviceID, actionID, actionType string, elapsed time.Duration, at time.Time) {
	c.WritePointWithTime(MeasurementActions,
		map[string]string{
			measurementTagDeviceID:    deviceID,
			measurementTagActionType:  actionType,
			measurementTagActionPhase: "completed",
		},
		map[string]interface{}{
			"action_id":   actionID,
			"count":       1,
			"duration_ms": float64(elapsed) / float64(time.Millisecond),
		},
		at,
	)
}

// WriteDeviceStatus records a device's status and firmware after a change.
func (c *Client) WriteDeviceStatus(deviceID, status, firmwareVersion string, at time.Time) {
	c.WritePointWithTime(MeasurementDeviceStatus,
		map[string]string{
			measurementTagDeviceID: deviceID,
			"status":               status,
		},
		map[string]interface{}{
			"firmware_version": firmwareVersion,
		},
		at,
	)
}

// WriteRegistration records a device registration.
func (c *Client) WriteRegistration(deviceID, firmwareVersion string, at time.Time) {
	c.WritePointWithTime(MeasurementRegistrations,
		map[string]string{
			measurementTagDeviceID: deviceID,
		},
		map[string]interface{}{
			"firmware_version": firmwareVersion,
			"count":            1,
		},
		at,
	)
}

// WritePoint writes a custom point timestamped now.
//
//	client.WritePoint("fleet_runtime",
//	    map[string]string{"host": "fleetd-01"},
//	    map[string]interface{}{"goroutines": 42})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
// Points are dropped silently while the client is not connected.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
