package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
	"github.com/nerrad567/fleet-core/internal/fleet"
)

type memRepo struct {
	mu   sync.Mutex
	logs []AuditLog
	err  error
}

func (m *memRepo) Create(_ context.Context, log *AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memRepo) List(_ context.Context, _ Filter) (*ListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &ListResult{Logs: append([]AuditLog(nil), m.logs...), Total: len(m.logs)}, nil
}

type countingLogger struct {
	mu     sync.Mutex
	warns  int
	errors int
}

func (l *countingLogger) Warn(string, ...any) {
	l.mu.Lock()
	l.warns++
	l.mu.Unlock()
}

func (l *countingLogger) Error(string, ...any) {
	l.mu.Lock()
	l.errors++
	l.mu.Unlock()
}

func TestFromEvent(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	idle := &device.Device{ID: "d1", FirmwareVersion: "2.0.0", Status: device.StatusIdle}
	done := &action.Action{ID: "ACTION-1234", Status: action.StatusCompleted, Details: "Success"}

	tests := []struct {
		name        string
		event       fleet.Event
		wantEntity  string
		wantID      string
		wantDetails map[string]any
	}{
		{
			name:        "registered",
			event:       fleet.Event{Type: fleet.EventDeviceRegistered, DeviceID: "d1", Device: &device.Device{ID: "d1", FirmwareVersion: "1.0", Status: device.StatusIdle}, Timestamp: at},
			wantEntity:  EntityDevice,
			wantID:      "d1",
			wantDetails: map[string]any{"device_status": "IDLE", "firmware_version": "1.0"},
		},
		{
			name:        "action started",
			event:       fleet.Event{Type: fleet.EventActionStarted, DeviceID: "d1", ActionID: "ACTION-1234", ActionType: action.TypeSoftwareUpdate, Parameters: "v2", Timestamp: at},
			wantEntity:  EntityAction,
			wantID:      "ACTION-1234",
			wantDetails: map[string]any{"action_type": "SOFTWARE_UPDATE", "parameters": "v2"},
		},
		{
			name:        "action completed",
			event:       fleet.Event{Type: fleet.EventActionCompleted, DeviceID: "d1", ActionID: "ACTION-1234", Device: idle, Action: done, Elapsed: 10 * time.Second, Timestamp: at},
			wantEntity:  EntityAction,
			wantID:      "ACTION-1234",
			wantDetails: map[string]any{"status": "COMPLETED", "details": "Success", "elapsed_ms": int64(10000), "device_status": "IDLE", "firmware_version": "2.0.0"},
		},
		{
			name:        "action completed for removed device",
			event:       fleet.Event{Type: fleet.EventActionCompleted, DeviceID: "gone", ActionID: "ACTION-1", Action: done, Timestamp: at},
			wantEntity:  EntityAction,
			wantID:      "ACTION-1",
			wantDetails: map[string]any{"status": "COMPLETED", "details": "Success", "device_missing": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromEvent(tt.event)
			if got.Action != string(tt.event.Type) {
				t.Errorf("Action = %q, want %q", got.Action, tt.event.Type)
			}
			if got.EntityType != tt.wantEntity || got.EntityID != tt.wantID {
				t.Errorf("entity = %s/%s, want %s/%s", got.EntityType, got.EntityID, tt.wantEntity, tt.wantID)
			}
			if got.DeviceID != tt.event.DeviceID {
				t.Errorf("DeviceID = %q", got.DeviceID)
			}
			if !got.CreatedAt.Equal(at) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
			}
			if len(got.Details) != len(tt.wantDetails) {
				t.Errorf("Details = %v, want %v", got.Details, tt.wantDetails)
			}
			for k, v := range tt.wantDetails {
				if got.Details[k] != v {
					t.Errorf("Details[%s] = %v (%T), want %v (%T)", k, got.Details[k], got.Details[k], v, v)
				}
			}
		})
	}
}

func TestRecorder_RunDrainsOnCancel(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo, nil)

	for i := 0; i < 3; i++ {
		rec.HandleEvent(fleet.Event{Type: fleet.EventDeviceRegistered, DeviceID: "d1"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	select {
	case <-rec.Done():
	default:
		t.Fatal("Done() not closed after Run returned")
	}

	res, _ := repo.List(context.Background(), Filter{})
	if res.Total != 3 {
		t.Errorf("recorded = %d, want 3", res.Total)
	}
}

func TestRecorder_QueueFullDrops(t *testing.T) {
	log := &countingLogger{}
	rec := NewRecorder(&memRepo{}, log)

	for i := 0; i < defaultQueueSize+5; i++ {
		rec.HandleEvent(fleet.Event{Type: fleet.EventDeviceStatusChanged, DeviceID: "d1"})
	}

	if log.warns != 5 {
		t.Errorf("warns = %d, want 5", log.warns)
	}
}

func TestRecorder_LogsWriteErrors(t *testing.T) {
	log := &countingLogger{}
	rec := NewRecorder(&memRepo{err: errors.New("disk full")}, log)

	rec.HandleEvent(fleet.Event{Type: fleet.EventDeviceRegistered, DeviceID: "d1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	if log.errors != 1 {
		t.Errorf("errors = %d, want 1", log.errors)
	}
}

func TestRecorder_WithService(t *testing.T) {
	repo := newTestRepo(t)
	rec := NewRecorder(repo, nil)

	svc := fleet.New(fleet.Options{Sinks: []fleet.EventSink{rec}})

	ctx, cancel := context.WithCancel(context.Background())
	go rec.Run(ctx)

	if _, err := svc.RegisterDevice(ctx, fleet.RegisterDeviceRequest{DeviceID: "d1", InitialFirmwareVersion: "1.0"}); err != nil {
		t.Fatalf("RegisterDevice() error = %v", err)
	}
	if _, err := svc.SetDeviceStatus(ctx, fleet.SetDeviceStatusRequest{DeviceID: "d1", Status: device.StatusOffline}); err != nil {
		t.Fatalf("SetDeviceStatus() error = %v", err)
	}

	cancel()
	<-rec.Done()

	res, err := repo.List(context.Background(), Filter{DeviceID: "d1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("Total = %d, want 2", res.Total)
	}
}
