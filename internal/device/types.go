package device

// Device is a managed entity in the fleet.
//
// Values of this type are snapshots: the Registry hands out copies, never
// references into its own storage.
type Device struct {
	ID              string `json:"id"`
	FirmwareVersion string `json:"firmware_version"`
	Status          Status `json:"status"`
}

// Status represents the operational status of a device.
type Status string

// Status constants.
//
// The core only ever drives StatusIdle and StatusUpdating. The remaining
// values can be set by operators through SetDeviceStatus.
const (
	StatusUnknown     Status = "UNKNOWN"
	StatusIdle        Status = "IDLE"
	StatusBusy        Status = "BUSY"
	StatusOffline     Status = "OFFLINE"
	StatusMaintenance Status = "MAINTENANCE"
	StatusUpdating    Status = "UPDATING"
	StatusError       Status = "ERROR"
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusUnknown, StatusIdle, StatusBusy, StatusOffline,
		StatusMaintenance, StatusUpdating, StatusError,
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
