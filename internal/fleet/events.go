package fleet

import (
	"time"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
)

// EventType identifies a change in fleet state.
type EventType string

// Event type constants.
const (
	EventDeviceRegistered    EventType = "device.registered"
	EventDeviceStatusChanged EventType = "device.status_changed"
	EventActionStarted       EventType = "action.started"
	EventActionCompleted     EventType = "action.completed"
)

// Event describes a state change that has already been applied.
//
// Device and Action are snapshots taken under the service lock at the moment
// of the change. Device is nil on EventActionCompleted when the device was
// no longer registered at completion time.
//
// Seq is assigned under the same lock and increases with every change.
// Events are delivered after the lock is released, so two events can reach
// a sink in the opposite order; a sink that keeps the latest snapshot per
// device or action compares Seq instead of trusting arrival order.
type Event struct {
	Seq        uint64         `json:"seq"`
	Type       EventType      `json:"type"`
	DeviceID   string         `json:"device_id,omitempty"`
	ActionID   string         `json:"action_id,omitempty"`
	ActionType action.Type    `json:"action_type,omitempty"`
	Parameters string         `json:"parameters,omitempty"`
	Device     *device.Device `json:"device,omitempty"`
	Action     *action.Action `json:"action,omitempty"`
	Elapsed    time.Duration  `json:"elapsed_ns,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// EventSink receives fleet events.
//
// Sinks are called synchronously, in registration order, on the goroutine
// that made the change and after the service lock has been released. A sink
// that blocks delays the caller; sinks that talk to the network should
// bound their own latency.
type EventSink interface {
	HandleEvent(ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ev Event)

// HandleEvent calls f(ev).
func (f EventSinkFunc) HandleEvent(ev Event) {
	f(ev)
}

// AddSink registers a sink for all subsequent events.
func (s *Service) AddSink(sink EventSink) {
	if sink == nil {
		return
	}
	s.sinkMu.Lock()
	s.sinks = append(s.sinks, sink)
	s.sinkMu.Unlock()
}

// emit delivers ev to every sink. It must not be called with s.mu held.
func (s *Service) emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	s.sinkMu.RLock()
	sinks := make([]EventSink, len(s.sinks))
	copy(sinks, s.sinks)
	s.sinkMu.RUnlock()

	for _, sink := range sinks {
		s.deliver(sink, ev)
	}
}

// deliver calls one sink, recovering from panics so a faulty sink cannot
// take down a request handler or an executor.
func (s *Service) deliver(sink EventSink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event sink panic recovered",
				"event", ev.Type,
				"panic", r,
			)
		}
	}()
	sink.HandleEvent(ev)
}
