package audit

import (
	"context"
	"time"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

const (
	// defaultQueueSize bounds the events waiting to be written.
	defaultQueueSize = 512

	// writeTimeout bounds a single insert.
	writeTimeout = 5 * time.Second
)

// Logger is the logging interface used by Recorder.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder is a fleet.EventSink that appends every event to the audit log.
//
// HandleEvent only enqueues. Run performs the inserts, so a slow disk never
// delays the fleet service. Events arriving while the queue is full are
// dropped with a warning.
type Recorder struct {
	repo   Repository
	logger Logger
	queue  chan fleet.Event
	done   chan struct{}
}

var _ fleet.EventSink = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to repo. logger may be nil.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan fleet.Event, defaultQueueSize),
		done:   make(chan struct{}),
	}
}

// HandleEvent queues ev for recording.
func (r *Recorder) HandleEvent(ev fleet.Event) {
	select {
	case r.queue <- ev:
	default:
		if r.logger != nil {
			r.logger.Warn("audit queue full, dropping event",
				"type", ev.Type,
				"device_id", ev.DeviceID,
				"action_id", ev.ActionID,
			)
		}
	}
}

// Run writes queued events until ctx is cancelled, then drains what is
// already queued before returning.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case ev := <-r.queue:
			r.record(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-r.queue:
					r.record(ev)
				default:
					return
				}
			}
		}
	}
}

// Done is closed when Run has returned.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder) record(ev fleet.Event) {
	entry := FromEvent(ev)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, &entry); err != nil && r.logger != nil {
		r.logger.Error("failed to write audit log",
			"type", ev.Type,
			"error", err,
		)
	}
}

// FromEvent converts a fleet event to an audit entry. Action events are
// recorded against the action; device events against the device.
func FromEvent(ev fleet.Event) AuditLog {
	entry := AuditLog{
		Action:    string(ev.Type),
		DeviceID:  ev.DeviceID,
		Source:    SourceDaemon,
		CreatedAt: ev.Timestamp,
		Details:   map[string]any{},
	}

	switch ev.Type {
	case fleet.EventActionStarted, fleet.EventActionCompleted:
		entry.EntityType = EntityAction
		entry.EntityID = ev.ActionID
		if ev.ActionType != "" {
			entry.Details["action_type"] = string(ev.ActionType)
		}
		if ev.Parameters != "" {
			entry.Details["parameters"] = ev.Parameters
		}
		if ev.Action != nil {
			entry.Details["status"] = string(ev.Action.Status)
			entry.Details["details"] = ev.Action.Details
		}
		if ev.Elapsed > 0 {
			entry.Details["elapsed_ms"] = ev.Elapsed.Milliseconds()
		}
		if ev.Type == fleet.EventActionCompleted && ev.Device == nil {
			entry.Details["device_missing"] = true
		}
	default:
		entry.EntityType = EntityDevice
		entry.EntityID = ev.DeviceID
	}

	if ev.Device != nil {
		entry.Details["device_status"] = string(ev.Device.Status)
		entry.Details["firmware_version"] = ev.Device.FirmwareVersion
	}
	if len(entry.Details) == 0 {
		entry.Details = nil
	}

	return entry
}
