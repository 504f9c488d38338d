package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/nerrad567/fleet-core/internal/fleet"
	"github.com/nerrad567/fleet-core/internal/rpc"
)

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

// writeConfig writes a config file and points FLEET_CONFIG at it.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(configEnv, path)
}

// TestRun_MissingConfig verifies an explicit config path must exist.
func TestRun_MissingConfig(t *testing.T) {
	t.Setenv(configEnv, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with a missing config file")
	}
}

// TestRun_InvalidConfig verifies validation errors stop startup.
func TestRun_InvalidConfig(t *testing.T) {
	writeConfig(t, `
rpc:
  port: 70000
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with an out-of-range port")
	}
}

// TestRun_ServesAndShutsDown starts the daemon with the audit database
// enabled, performs an action over gRPC, then cancels and expects a clean exit.
func TestRun_ServesAndShutsDown(t *testing.T) {
	rpcPort := freePort(t)
	apiPort := freePort(t)
	dbPath := filepath.Join(t.TempDir(), "fleet.db")

	writeConfig(t, `
service:
  action_duration: 20ms
rpc:
  host: 127.0.0.1
  port: `+strconv.Itoa(rpcPort)+`
api:
  enabled: true
  host: 127.0.0.1
  port: `+strconv.Itoa(apiPort)+`
database:
  enabled: true
  path: `+dbPath+`
  wal_mode: true
  busy_timeout: 5
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	client, err := rpc.NewClient(net.JoinHostPort("127.0.0.1", strconv.Itoa(rpcPort)))
	if err != nil {
		cancel()
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	// Wait for the listener.
	var resp fleet.RegisterDeviceResponse
	deadline := time.Now().Add(5 * time.Second)
	for {
		callCtx, callCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		resp, err = client.RegisterDevice(callCtx, fleet.RegisterDeviceRequest{DeviceID: "d1", InitialFirmwareVersion: "1.0"})
		callCancel()
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("RegisterDevice() error = %v", err)
	}
	if !resp.Success {
		t.Errorf("RegisterDevice() = %+v, want success", resp)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("audit database not created: %v", err)
	}
}
