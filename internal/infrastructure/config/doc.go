// Package config handles loading and validating fleet daemon configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Every optional integration (MQTT, InfluxDB, the audit database) is off
// by default, so the daemon runs with no file at all: the gRPC service on
// 0.0.0.0:50051 and the REST API on 0.0.0.0:8080.
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.RPC.Address())
package config
