package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "fleet"

// Topics provides builders for fleet MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.NewTopics("fleet")
//	stateTopic := topics.DeviceState("sensor-01")
//	// Returns: "fleet/device/sensor-01/state"
type Topics struct {
	Prefix string
}

// NewTopics returns a topic builder rooted at prefix. Trailing slashes are
// trimmed and an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	return Topics{Prefix: strings.TrimRight(prefix, "/")}
}

func (t Topics) root() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// segment makes an identifier safe to embed as a single topic level.
// MQTT reserves "/" as the level separator and "+" and "#" as wildcards.
func segment(id string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(id)
}

// =============================================================================
// Fleet Topics
// =============================================================================

// DeviceState returns the retained device snapshot topic.
//
// Example: fleet/device/sensor-01/state
func (t Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", t.root(), segment(deviceID))
}

// ActionStatus returns the retained action status topic.
//
// Example: fleet/action/ACTION-4821/status
func (t Topics) ActionStatus(actionID string) string {
	return fmt.Sprintf("%s/action/%s/status", t.root(), segment(actionID))
}

// Event returns the topic for a fleet event type.
//
// Example: fleet/event/action.completed
func (t Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", t.root(), segment(eventType))
}

// SystemStatus returns the daemon online/offline status topic.
//
// Example: fleet/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.root())
}
