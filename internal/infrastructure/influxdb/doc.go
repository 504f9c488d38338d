// Package influxdb provides InfluxDB connectivity for the fleet daemon.
//
// It wraps the official influxdb-client-go v2 library and records fleet
// activity as time-series points:
//
//	fleet_device_registrations  device_id               firmware_version, count
//	fleet_device_status         device_id, status       firmware_version
//	fleet_actions               device_id, action_type, phase
//	                                                    action_id, count, duration_ms
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.SetOnError(func(err error) {
//	    logger.Warn("influxdb write failed", "error", err)
//	})
//	svc.AddSink(influxdb.NewMetricsSink(client))
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are batched and sent
// asynchronously; write failures are reported through SetOnError.
package influxdb
