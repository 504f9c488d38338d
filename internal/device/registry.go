package device

// Registry is the keyed store of Device records.
//
// Registry performs no locking of its own. It is owned by the fleet
// service, which serialises every call behind the single lock that also
// guards the action ledger. Using a Registry from several goroutines
// without that external lock is a data race.
type Registry struct {
	devices map[string]*Device
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]*Device),
	}
}

// Register creates a device with StatusIdle and the given firmware version.
// Returns ErrDeviceExists if the ID is already present; the existing record
// is left untouched.
func (r *Registry) Register(id, firmwareVersion string) error {
	if _, exists := r.devices[id]; exists {
		return ErrDeviceExists
	}

	r.devices[id] = &Device{
		ID:              id,
		FirmwareVersion: firmwareVersion,
		Status:          StatusIdle,
	}
	return nil
}

// SetStatus overwrites the status of a device.
//
// There is no transition validation: any status may replace any other,
// including while an action is in flight for the device.
func (r *Registry) SetStatus(id string, status Status) error {
	d, ok := r.devices[id]
	if !ok {
		return ErrDeviceNotFound
	}
	d.Status = status
	return nil
}

// Get returns a snapshot of the device.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) Get(id string) (Device, error) {
	d, ok := r.devices[id]
	if !ok {
		return Device{}, ErrDeviceNotFound
	}
	return *d, nil
}

// CompleteUpdate resets a device to StatusIdle and overwrites its firmware
// version. It reports whether the device was present; an absent device is
// silently skipped.
func (r *Registry) CompleteUpdate(id, firmwareVersion string) bool {
	d, ok := r.devices[id]
	if !ok {
		return false
	}
	d.Status = StatusIdle
	d.FirmwareVersion = firmwareVersion
	return true
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.devices)
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalDevices int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	stats := Stats{
		TotalDevices: len(r.devices),
		ByStatus:     make(map[Status]int),
	}
	for _, d := range r.devices {
		stats.ByStatus[d.Status]++
	}
	return stats
}
