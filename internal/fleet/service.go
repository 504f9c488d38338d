package fleet

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
)

// Defaults applied by New when the corresponding Options field is zero.
const (
	DefaultActionDuration     = 10 * time.Second
	DefaultPostUpdateFirmware = "2.0.0"
)

// Fixed business messages and action details.
const (
	msgDeviceExists     = "Device already exists."
	msgDeviceRegistered = "Device registered successfully."
	msgDeviceNotFound   = "Device not found"
	msgActionInitiated  = "Action initiated successfully."

	startingDetails  = "Starting..."
	completedDetails = "Success"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Service.
type Options struct {
	// ActionDuration is how long an executor simulates work before
	// completing. Zero selects DefaultActionDuration; a negative value
	// completes immediately.
	ActionDuration time.Duration

	// PostUpdateFirmware is written to a device when its action completes.
	// Empty selects DefaultPostUpdateFirmware.
	PostUpdateFirmware string

	// IDGenerator overrides action id generation. Nil selects
	// action.GenerateID.
	IDGenerator action.IDGenerator

	// Logger receives operational logs. Nil disables logging.
	Logger Logger

	// Sinks receive every event. More can be added later with AddSink.
	Sinks []EventSink
}

// Service owns the device registry and the action ledger.
//
// Every read and write of either store happens under mu, so each operation
// is atomic with respect to every other operation and to executor
// completions. The lock is never held across a sleep, a log call, or event
// delivery.
//
// All public methods are thread-safe.
type Service struct {
	mu       sync.Mutex
	registry *device.Registry
	ledger   *action.Ledger
	seq      uint64 // last Event.Seq handed out; guarded by mu

	actionDuration     time.Duration
	postUpdateFirmware string

	sinkMu sync.RWMutex
	sinks  []EventSink

	inFlight atomic.Int64
	logger   Logger
}

// New creates a Service with empty stores.
func New(opts Options) *Service {
	s := &Service{
		registry:           device.NewRegistry(),
		ledger:             action.NewLedger(opts.IDGenerator),
		actionDuration:     opts.ActionDuration,
		postUpdateFirmware: opts.PostUpdateFirmware,
		logger:             opts.Logger,
	}
	if s.actionDuration == 0 {
		s.actionDuration = DefaultActionDuration
	}
	if s.postUpdateFirmware == "" {
		s.postUpdateFirmware = DefaultPostUpdateFirmware
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	for _, sink := range opts.Sinks {
		s.AddSink(sink)
	}
	return s
}

// RegisterDevice adds a device in status IDLE.
//
// A duplicate id is a business failure (Success=false), not an error, and
// leaves the existing record untouched. Any string is a valid id,
// including the empty string.
func (s *Service) RegisterDevice(_ context.Context, req RegisterDeviceRequest) (RegisterDeviceResponse, error) {
	s.mu.Lock()
	err := s.registry.Register(req.DeviceID, req.InitialFirmwareVersion)
	var snapshot device.Device
	var seq uint64
	if err == nil {
		snapshot, _ = s.registry.Get(req.DeviceID)
		seq = s.nextSeq()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("duplicate device registration", "device_id", req.DeviceID)
		return RegisterDeviceResponse{Success: false, Message: msgDeviceExists}, nil
	}

	s.logger.Info("device registered",
		"device_id", req.DeviceID,
		"firmware_version", req.InitialFirmwareVersion,
	)
	s.emit(Event{
		Seq:      seq,
		Type:     EventDeviceRegistered,
		DeviceID: req.DeviceID,
		Device:   &snapshot,
	})
	return RegisterDeviceResponse{Success: true, Message: msgDeviceRegistered}, nil
}

// SetDeviceStatus overwrites a device's status without transition checks.
// Returns ErrDeviceNotFound if the device does not exist.
func (s *Service) SetDeviceStatus(_ context.Context, req SetDeviceStatusRequest) (SetDeviceStatusResponse, error) {
	if !device.ValidStatus(req.Status) {
		return SetDeviceStatusResponse{}, fmt.Errorf("%w: %w %q", ErrInvalidArgument, device.ErrInvalidStatus, req.Status)
	}

	s.mu.Lock()
	previous, err := s.registry.Get(req.DeviceID)
	if err != nil {
		s.mu.Unlock()
		return SetDeviceStatusResponse{}, ErrDeviceNotFound
	}
	_ = s.registry.SetStatus(req.DeviceID, req.Status)
	snapshot, _ := s.registry.Get(req.DeviceID)
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("device status set",
		"device_id", req.DeviceID,
		"from", previous.Status,
		"to", req.Status,
	)
	s.emit(Event{
		Seq:      seq,
		Type:     EventDeviceStatusChanged,
		DeviceID: req.DeviceID,
		Device:   &snapshot,
	})
	return SetDeviceStatusResponse{Success: true}, nil
}

// GetDeviceInfo returns a snapshot of a device.
// Returns ErrDeviceNotFound if the device does not exist.
func (s *Service) GetDeviceInfo(_ context.Context, req GetDeviceInfoRequest) (GetDeviceInfoResponse, error) {
	s.mu.Lock()
	d, err := s.registry.Get(req.DeviceID)
	s.mu.Unlock()

	if err != nil {
		return GetDeviceInfoResponse{}, ErrDeviceNotFound
	}
	return GetDeviceInfoResponse{Device: d}, nil
}

// InitiateDeviceAction records a RUNNING action, marks the device UPDATING
// and schedules an executor to complete it after the action duration.
//
// An unknown device is a business failure (Success=false) and creates
// nothing. On success the response is returned immediately; the caller
// polls GetDeviceActionStatus for the outcome.
func (s *Service) InitiateDeviceAction(_ context.Context, req InitiateDeviceActionRequest) (InitiateDeviceActionResponse, error) {
	actionType := req.ActionType
	if actionType == "" {
		actionType = action.TypeSoftwareUpdate
	}

	s.mu.Lock()
	if _, err := s.registry.Get(req.DeviceID); err != nil {
		s.mu.Unlock()
		s.logger.Debug("action requested for unknown device", "device_id", req.DeviceID)
		return InitiateDeviceActionResponse{Success: false, Message: msgDeviceNotFound}, nil
	}

	actionID := s.ledger.NextID()
	s.ledger.Create(actionID, startingDetails)
	_ = s.registry.SetStatus(req.DeviceID, device.StatusUpdating)
	s.spawn(actionID, req.DeviceID, actionType)

	act, _ := s.ledger.Get(actionID)
	dev, _ := s.registry.Get(req.DeviceID)
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("action initiated",
		"action_id", actionID,
		"device_id", req.DeviceID,
		"action_type", actionType,
		"parameters", req.Parameters,
	)
	s.emit(Event{
		Seq:        seq,
		Type:       EventActionStarted,
		DeviceID:   req.DeviceID,
		ActionID:   actionID,
		ActionType: actionType,
		Parameters: req.Parameters,
		Device:     &dev,
		Action:     &act,
	})
	return InitiateDeviceActionResponse{
		ActionID: actionID,
		Success:  true,
		Message:  msgActionInitiated,
	}, nil
}

// nextSeq returns the sequence number for a change. Called with s.mu held.
func (s *Service) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// GetDeviceActionStatus returns a snapshot of an action.
// Returns ErrActionNotFound if the action does not exist.
func (s *Service) GetDeviceActionStatus(_ context.Context, req GetDeviceActionStatusRequest) (GetDeviceActionStatusResponse, error) {
	s.mu.Lock()
	a, err := s.ledger.Get(req.ActionID)
	s.mu.Unlock()

	if err != nil {
		return GetDeviceActionStatusResponse{}, ErrActionNotFound
	}
	return GetDeviceActionStatusResponse{
		ActionID: a.ID,
		Status:   a.Status,
		Details:  a.Details,
	}, nil
}

// Stats is a point-in-time summary of service state.
type Stats struct {
	Devices        device.Stats `json:"devices"`
	Actions        int          `json:"actions"`
	RunningActions int          `json:"running_actions"`
	InFlight       int64        `json:"in_flight_executors"`
}

// GetStats returns current service statistics.
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	stats := Stats{
		Devices:        s.registry.GetStats(),
		Actions:        s.ledger.Len(),
		RunningActions: s.ledger.Running(),
	}
	s.mu.Unlock()
	stats.InFlight = s.InFlight()
	return stats
}

// InFlight returns the number of executors that have not yet finished.
// Executors still sleeping at shutdown are abandoned; this is how many.
func (s *Service) InFlight() int64 {
	return s.inFlight.Load()
}
