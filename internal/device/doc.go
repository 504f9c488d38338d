// Package device provides the Device Registry for Fleet Core.
//
// The registry is the catalogue of every device the service knows about:
// its caller-assigned ID, its current firmware version, and its operational
// status. Devices are created by registration and never removed.
//
// # Key Types
//
//   - Device: snapshot of a single device record
//   - Status: operational status (IDLE, UPDATING, ...)
//   - Registry: keyed store with unique-ID enforcement
//
// # Usage
//
//	reg := device.NewRegistry()
//	if err := reg.Register("sensor-01", "1.0.0"); errors.Is(err, device.ErrDeviceExists) {
//	    // business-level failure, report to caller
//	}
//	dev, err := reg.Get("sensor-01") // dev is a copy
//
// # Thread Safety
//
// The Registry is NOT safe for concurrent use on its own. The fleet service
// wraps it, together with the action ledger, behind one exclusive lock so
// that observers never see one store updated and the other not.
package device
