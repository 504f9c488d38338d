package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
service:
  action_duration: 2s
  post_update_firmware: "3.1.0"
rpc:
  host: "127.0.0.1"
  port: 6000
api:
  port: 6001
mqtt:
  enabled: true
  broker:
    host: "broker.local"
  topic_prefix: "lab"
database:
  enabled: true
  path: "/tmp/test.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ActionDuration != 2*time.Second {
		t.Errorf("Service.ActionDuration = %v, want 2s", cfg.Service.ActionDuration)
	}
	if cfg.Service.PostUpdateFirmware != "3.1.0" {
		t.Errorf("Service.PostUpdateFirmware = %q, want %q", cfg.Service.PostUpdateFirmware, "3.1.0")
	}
	if got := cfg.RPC.Address(); got != "127.0.0.1:6000" {
		t.Errorf("RPC.Address() = %q, want %q", got, "127.0.0.1:6000")
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.TopicPrefix != "lab" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	// Defaults survive for keys the file leaves out.
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.RPC.Address() != "0.0.0.0:50051" {
		t.Errorf("RPC.Address() = %q, want 0.0.0.0:50051", cfg.RPC.Address())
	}
	if cfg.Service.ActionDuration != 10*time.Second {
		t.Errorf("Service.ActionDuration = %v, want 10s", cfg.Service.ActionDuration)
	}
	if cfg.Service.PostUpdateFirmware != "2.0.0" {
		t.Errorf("Service.PostUpdateFirmware = %q, want 2.0.0", cfg.Service.PostUpdateFirmware)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.Database.Enabled {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist in chain", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
rpc:
  port: 70000
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "rpc.port") {
		t.Errorf("Load() error = %v, want mention of rpc.port", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
rpc:
  port: 6000
`)
	t.Setenv("FLEET_RPC_PORT", "7000")
	t.Setenv("FLEET_SERVICE_ACTION_DURATION", "250ms")
	t.Setenv("FLEET_DATABASE_PATH", "/var/lib/fleet/audit.db")
	t.Setenv("FLEET_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RPC.Port != 7000 {
		t.Errorf("RPC.Port = %d, want 7000", cfg.RPC.Port)
	}
	if cfg.Service.ActionDuration != 250*time.Millisecond {
		t.Errorf("Service.ActionDuration = %v, want 250ms", cfg.Service.ActionDuration)
	}
	if cfg.Database.Path != "/var/lib/fleet/audit.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrideInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"rpc port", "FLEET_RPC_PORT", "not-a-port"},
		{"api port", "FLEET_API_PORT", "eighty"},
		{"action duration", "FLEET_SERVICE_ACTION_DURATION", "ten seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			if err == nil {
				t.Fatalf("Load() expected error for %s=%q", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative action duration",
			mutate:  func(c *Config) { c.Service.ActionDuration = -time.Second },
			wantErr: "service.action_duration",
		},
		{
			name:    "empty post-update firmware",
			mutate:  func(c *Config) { c.Service.PostUpdateFirmware = "" },
			wantErr: "service.post_update_firmware",
		},
		{
			name:    "rpc port zero",
			mutate:  func(c *Config) { c.RPC.Port = 0 },
			wantErr: "rpc.port",
		},
		{
			name:    "api port clashes with rpc",
			mutate:  func(c *Config) { c.API.Port = c.RPC.Port },
			wantErr: "api.port must differ",
		},
		{
			name: "api port ignored when api disabled",
			mutate: func(c *Config) {
				c.API.Enabled = false
				c.API.Port = 0
			},
		},
		{
			name: "tls without files",
			mutate: func(c *Config) {
				c.API.TLS.Enabled = true
			},
			wantErr: "api.tls",
		},
		{
			name:    "mqtt qos out of range",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without prefix",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.TopicPrefix = ""
			},
			wantErr: "mqtt.topic_prefix",
		},
		{
			name:    "influxdb enabled without org",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.org",
		},
		{
			name: "database enabled without path",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", got)
	}
}
