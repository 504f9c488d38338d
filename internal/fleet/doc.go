// Package fleet implements the device management service core.
//
// A Service owns two stores, the device registry and the action ledger,
// and serialises all access to both behind one mutex. It exposes five
// operations:
//
//   - RegisterDevice: add a device in status IDLE
//   - SetDeviceStatus: overwrite a device's status
//   - GetDeviceInfo: read a device snapshot
//   - InitiateDeviceAction: start an asynchronous software update
//   - GetDeviceActionStatus: poll an action
//
// InitiateDeviceAction returns immediately. A detached executor goroutine
// sleeps for the configured action duration, then marks the action
// COMPLETED and, if the device still exists, resets it to IDLE with the
// post-update firmware version. Executors are not cancellable and are
// abandoned at process exit; InFlight reports how many are pending.
//
// Every applied change is published as an Event to the registered
// EventSinks after the lock is released. Sinks feed MQTT, the WebSocket
// hub, InfluxDB and the audit log.
//
// Usage:
//
//	svc := fleet.New(fleet.Options{Logger: log})
//	svc.AddSink(hub)
//
//	resp, err := svc.RegisterDevice(ctx, fleet.RegisterDeviceRequest{
//	    DeviceID:               "device-001",
//	    InitialFirmwareVersion: "1.0.0",
//	})
package fleet
