// Package mqtt provides MQTT connectivity for the fleet daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - An EventPublisher that mirrors fleet events onto the bus
//
// # Topics
//
// All topics live under the configured prefix (default "fleet"):
//
//	fleet/device/{device_id}/state     retained device snapshot (best-effort)
//	fleet/action/{action_id}/status    retained action snapshot
//	fleet/event/{event_type}           every fleet event
//	fleet/system/status                online / offline (LWT)
//
// MQTT is optional. The in-memory registry and ledger remain the source
// of truth; nothing published here is read back.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	pub := mqtt.NewEventPublisher(client, client.Topics(), client.QoS(), logger)
//	go pub.Run(ctx)
//	svc.AddSink(pub)
package mqtt
