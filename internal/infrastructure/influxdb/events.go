package influxdb

import (
	"time"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

// MetricsSink turns fleet events into InfluxDB points.
//
// Writes go through the client's non-blocking batch API, so HandleEvent
// returns immediately.
type MetricsSink struct {
	client *Client
}

var _ fleet.EventSink = (*MetricsSink)(nil)

// NewMetricsSink creates a sink writing through client.
func NewMetricsSink(client *Client) *MetricsSink {
	return &MetricsSink{client: client}
}

// HandleEvent writes the point that corresponds to ev.
func (m *MetricsSink) HandleEvent(ev fleet.Event) {
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	switch ev.Type {
	case fleet.EventDeviceRegistered:
		if ev.Device != nil {
			m.client.WriteRegistration(ev.DeviceID, ev.Device.FirmwareVersion, at)
		}
	case fleet.EventDeviceStatusChanged:
		if ev.Device != nil {
			m.client.WriteDeviceStatus(ev.DeviceID, string(ev.Device.Status), ev.Device.FirmwareVersion, at)
		}
	case fleet.EventActionStarted:
		m.client.WriteActionStarted(ev.DeviceID, ev.ActionID, string(ev.ActionType), at)
	case fleet.EventActionCompleted:
		m.client.WriteActionCompleted(ev.DeviceID, ev.ActionID, string(ev.ActionType), ev.Elapsed, at)
		if ev.Device != nil {
			m.client.WriteDeviceStatus(ev.DeviceID, string(ev.Device.Status), ev.Device.FirmwareVersion, at)
		}
	}
}
