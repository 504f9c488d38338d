package device

import (
	"errors"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("creates device in IDLE state", func(t *testing.T) {
		if err := registry.Register("dev-1", "1.0.0"); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		got, err := registry.Get("dev-1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Status != StatusIdle {
			t.Errorf("Status = %q, want %q", got.Status, StatusIdle)
		}
		if got.FirmwareVersion != "1.0.0" {
			t.Errorf("FirmwareVersion = %q, want %q", got.FirmwareVersion, "1.0.0")
		}
	})

	t.Run("duplicate ID keeps first record", func(t *testing.T) {
		err := registry.Register("dev-1", "9.9.9")
		if !errors.Is(err, ErrDeviceExists) {
			t.Fatalf("Register() error = %v, want ErrDeviceExists", err)
		}

		got, _ := registry.Get("dev-1")
		if got.FirmwareVersion != "1.0.0" {
			t.Errorf("FirmwareVersion = %q, want original %q", got.FirmwareVersion, "1.0.0")
		}
		if registry.Len() != 1 {
			t.Errorf("Len() = %d, want 1", registry.Len())
		}
	})
}

func TestRegistry_SetStatus(t *testing.T) {
	registry := NewRegistry()
	registry.Register("dev-1", "1.0.0")

	t.Run("any status from any status", func(t *testing.T) {
		for _, s := range AllStatuses() {
			if err := registry.SetStatus("dev-1", s); err != nil {
				t.Fatalf("SetStatus(%q) error = %v", s, err)
			}
			got, _ := registry.Get("dev-1")
			if got.Status != s {
				t.Errorf("Status = %q, want %q", got.Status, s)
			}
		}
	})

	t.Run("returns ErrDeviceNotFound for unknown device", func(t *testing.T) {
		err := registry.SetStatus("missing", StatusBusy)
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("SetStatus() error = %v, want ErrDeviceNotFound", err)
		}
	})
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	registry.Register("dev-1", "1.0.0")

	t.Run("returns a snapshot", func(t *testing.T) {
		got, err := registry.Get("dev-1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		got.Status = StatusError
		got.FirmwareVersion = "mutated"

		again, _ := registry.Get("dev-1")
		if again.Status != StatusIdle || again.FirmwareVersion != "1.0.0" {
			t.Errorf("registry mutated through snapshot: %+v", again)
		}
	})

	t.Run("returns ErrDeviceNotFound for nonexistent", func(t *testing.T) {
		_, err := registry.Get("nonexistent")
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("Get() error = %v, want ErrDeviceNotFound", err)
		}
	})
}

func TestRegistry_CompleteUpdate(t *testing.T) {
	registry := NewRegistry()
	registry.Register("dev-1", "1.0.0")
	registry.SetStatus("dev-1", StatusUpdating)

	if ok := registry.CompleteUpdate("dev-1", "2.0.0"); !ok {
		t.Fatal("CompleteUpdate() = false, want true")
	}

	got, _ := registry.Get("dev-1")
	if got.Status != StatusIdle {
		t.Errorf("Status = %q, want %q", got.Status, StatusIdle)
	}
	if got.FirmwareVersion != "2.0.0" {
		t.Errorf("FirmwareVersion = %q, want %q", got.FirmwareVersion, "2.0.0")
	}

	if ok := registry.CompleteUpdate("missing", "2.0.0"); ok {
		t.Error("CompleteUpdate() on missing device = true, want false")
	}
	if registry.Len() != 1 {
		t.Errorf("CompleteUpdate created a device: Len() = %d", registry.Len())
	}
}

func TestRegistry_GetStats(t *testing.T) {
	registry := NewRegistry()
	registry.Register("a", "1.0.0")
	registry.Register("b", "1.0.0")
	registry.Register("c", "1.0.0")
	registry.SetStatus("c", StatusUpdating)

	stats := registry.GetStats()
	if stats.TotalDevices != 3 {
		t.Errorf("TotalDevices = %d, want 3", stats.TotalDevices)
	}
	if stats.ByStatus[StatusIdle] != 2 {
		t.Errorf("ByStatus[IDLE] = %d, want 2", stats.ByStatus[StatusIdle])
	}
	if stats.ByStatus[StatusUpdating] != 1 {
		t.Errorf("ByStatus[UPDATING] = %d, want 1", stats.ByStatus[StatusUpdating])
	}
}
