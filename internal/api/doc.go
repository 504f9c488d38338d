// Package api implements the HTTP REST API and WebSocket server for the fleet daemon.
//
// This package provides:
//   - REST endpoints mirroring the five DeviceManagement operations
//   - WebSocket hub streaming fleet events (device.registered,
//     device.status_changed, action.started, action.completed)
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Routes
//
//	GET  /api/v1/health
//	GET  /api/v1/metrics
//	POST /api/v1/devices                  register
//	GET  /api/v1/devices/{id}             device info
//	PUT  /api/v1/devices/{id}/status      set status
//	POST /api/v1/devices/{id}/actions     initiate action
//	GET  /api/v1/actions/{id}             action status
//	GET  /api/v1/audit                    recorded events (database enabled)
//	GET  /api/v1/ws                       event stream
//
// # Errors
//
// Unknown device or action ids return 404; malformed bodies and invalid
// statuses return 400. A duplicate registration or an action on an
// unknown device is a business refusal and comes back as 200 with
// success=false, the same as over gRPC.
package api
