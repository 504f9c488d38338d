package fleet

import (
	"time"

	"github.com/nerrad567/fleet-core/internal/action"
)

// executor is the one-shot background task behind an initiated action.
//
// Its only access to shared state is the complete callback, which rewrites
// exactly one ledger entry and at most one device under the service lock.
// Executors are never cancelled and never joined.
type executor struct {
	actionID   string
	deviceID   string
	actionType action.Type
	delay      time.Duration
	started    time.Time
	complete   func(e *executor)
}

// run waits out the simulated work and posts the completion.
func (e *executor) run() {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	e.complete(e)
}

// spawn launches an executor. Called with s.mu held so the task is scheduled
// before the initiating operation releases the lock.
func (s *Service) spawn(actionID, deviceID string, actionType action.Type) {
	e := &executor{
		actionID:   actionID,
		deviceID:   deviceID,
		actionType: actionType,
		delay:      s.actionDuration,
		started:    time.Now(),
		complete:   s.completeAction,
	}

	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Add(-1)
		e.run()
	}()
}

// completeAction marks the action COMPLETED and, if the device is still
// registered, resets it to IDLE with the post-update firmware version.
//
// Both writes are unconditional: a status set through SetDeviceStatus while
// the action was running is overwritten (last writer wins).
func (s *Service) completeAction(e *executor) {
	s.mu.Lock()
	s.ledger.Complete(e.actionID, completedDetails)
	found := s.registry.CompleteUpdate(e.deviceID, s.postUpdateFirmware)

	ev := Event{
		Seq:        s.nextSeq(),
		Type:       EventActionCompleted,
		DeviceID:   e.deviceID,
		ActionID:   e.actionID,
		ActionType: e.actionType,
		Elapsed:    time.Since(e.started),
	}
	if act, err := s.ledger.Get(e.actionID); err == nil {
		ev.Action = &act
	}
	if found {
		if dev, err := s.registry.Get(e.deviceID); err == nil {
			ev.Device = &dev
		}
	}
	s.mu.Unlock()

	if !found {
		s.logger.Warn("action finished for unregistered device",
			"action_id", e.actionID,
			"device_id", e.deviceID,
		)
	}
	s.logger.Info("action finished",
		"action_id", e.actionID,
		"device_id", e.deviceID,
		"elapsed_ms", ev.Elapsed.Milliseconds(),
	)
	s.emit(ev)
}
