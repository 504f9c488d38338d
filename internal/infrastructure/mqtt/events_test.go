package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
	"github.com/nerrad567/fleet-core/internal/fleet"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// fakePublisher records publishes instead of talking to a broker.
type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (f *fakePublisher) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func TestEventPublisher_DeviceEvent(t *testing.T) {
	fp := &fakePublisher{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 1, nil)

	dev := device.Device{ID: "d1", FirmwareVersion: "1.0", Status: device.StatusIdle}
	p.publish(fleet.Event{Type: fleet.EventDeviceRegistered, DeviceID: "d1", Device: &dev})

	msgs := fp.snapshot()
	if len(msgs) != 2 {
		t.Fatalf("publishes = %d, want 2", len(msgs))
	}

	if msgs[0].topic != "fleet/event/device.registered" || msgs[0].retained {
		t.Errorf("event publish = %s retained=%v", msgs[0].topic, msgs[0].retained)
	}
	if msgs[1].topic != "fleet/device/d1/state" || !msgs[1].retained {
		t.Errorf("state publish = %s retained=%v", msgs[1].topic, msgs[1].retained)
	}

	var got device.Device
	if err := json.Unmarshal(msgs[1].payload, &got); err != nil {
		t.Fatalf("state payload: %v", err)
	}
	if got != dev {
		t.Errorf("state payload = %+v, want %+v", got, dev)
	}
	if msgs[0].qos != 1 || msgs[1].qos != 1 {
		t.Errorf("qos = %d/%d, want 1", msgs[0].qos, msgs[1].qos)
	}
}

func TestEventPublisher_ActionCompleted(t *testing.T) {
	fp := &fakePublisher{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 0, nil)

	dev := device.Device{ID: "d1", FirmwareVersion: "2.0.0", Status: device.StatusIdle}
	act := action.Action{ID: "ACTION-1234", Status: action.StatusCompleted, Details: "Success"}
	p.publish(fleet.Event{
		Type:     fleet.EventActionCompleted,
		DeviceID: "d1",
		ActionID: "ACTION-1234",
		Device:   &dev,
		Action:   &act,
	})

	want := []string{
		"fleet/event/action.completed",
		"fleet/device/d1/state",
		"fleet/action/ACTION-1234/status",
	}
	msgs := fp.snapshot()
	if len(msgs) != len(want) {
		t.Fatalf("publishes = %d, want %d", len(msgs), len(want))
	}
	for i, topic := range want {
		if msgs[i].topic != topic {
			t.Errorf("publish[%d] topic = %q, want %q", i, msgs[i].topic, topic)
		}
	}
}

func TestEventPublisher_NoSnapshot(t *testing.T) {
	fp := &fakePublisher{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 1, nil)

	// Completion for a device that no longer exists carries no device snapshot.
	act := action.Action{ID: "ACTION-1", Status: action.StatusCompleted}
	p.publish(fleet.Event{Type: fleet.EventActionCompleted, DeviceID: "gone", Action: &act})

	for _, m := range fp.snapshot() {
		if m.topic == "fleet/device/gone/state" {
			t.Error("published device state for missing device")
		}
	}
}

// Events reach the publisher in emit order, not lock order. A snapshot older
// than the retained one must not replace it.
func TestEventPublisher_StaleSnapshotSkipped(t *testing.T) {
	fp := &fakePublisher{}
	logger := &captureLogger{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 1, logger)

	maint := device.Device{ID: "d1", FirmwareVersion: "2.0.0", Status: device.StatusMaintenance}
	idle := device.Device{ID: "d1", FirmwareVersion: "2.0.0", Status: device.StatusIdle}
	act := action.Action{ID: "ACTION-1", Status: action.StatusCompleted, Details: "Success"}

	// Seq 5 was applied after seq 4 but is delivered first.
	p.publish(fleet.Event{Seq: 5, Type: fleet.EventDeviceStatusChanged, DeviceID: "d1", Device: &maint})
	p.publish(fleet.Event{Seq: 4, Type: fleet.EventActionCompleted, DeviceID: "d1", ActionID: "ACTION-1", Device: &idle, Action: &act})

	var states []device.Device
	var topics []string
	for _, m := range fp.snapshot() {
		topics = append(topics, m.topic)
		if m.topic == "fleet/device/d1/state" {
			var d device.Device
			if err := json.Unmarshal(m.payload, &d); err != nil {
				t.Fatalf("state payload: %v", err)
			}
			states = append(states, d)
		}
	}

	want := []string{
		"fleet/event/device.status_changed",
		"fleet/device/d1/state",
		"fleet/event/action.completed",
		"fleet/action/ACTION-1/status",
	}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("publish[%d] = %q, want %q", i, topics[i], want[i])
		}
	}
	if len(states) != 1 || states[0] != maint {
		t.Errorf("retained states = %+v, want only %+v", states, maint)
	}
	if warns, _ := logger.counts(); warns != 1 {
		t.Errorf("warn count = %d, want 1", warns)
	}

	// A newer change replaces the retained snapshot as usual.
	p.publish(fleet.Event{Seq: 6, Type: fleet.EventDeviceStatusChanged, DeviceID: "d1", Device: &idle})
	msgs := fp.snapshot()
	last := msgs[len(msgs)-1]
	if last.topic != "fleet/device/d1/state" || !last.retained {
		t.Errorf("last publish = %s retained=%v, want retained device state", last.topic, last.retained)
	}
}

func TestEventPublisher_PublishErrorLogged(t *testing.T) {
	fp := &fakePublisher{err: ErrNotConnected}
	logger := &captureLogger{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 1, logger)

	p.publish(fleet.Event{Type: fleet.EventDeviceStatusChanged, DeviceID: "d1"})

	if warns, _ := logger.counts(); warns != 1 {
		t.Errorf("warn count = %d, want 1", warns)
	}
}

func TestEventPublisher_RunDrainsQueue(t *testing.T) {
	fp := &fakePublisher{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.HandleEvent(fleet.Event{Type: fleet.EventActionStarted, ActionID: "ACTION-1"})
	p.HandleEvent(fleet.Event{Type: fleet.EventActionStarted, ActionID: "ACTION-2"})

	deadline := time.Now().Add(2 * time.Second)
	for len(fp.snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(fp.snapshot()); n != 2 {
		t.Errorf("publishes = %d, want 2", n)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Run() did not return after cancel")
	}
}

func TestEventPublisher_QueueFullDrops(t *testing.T) {
	fp := &fakePublisher{}
	logger := &captureLogger{}
	p := NewEventPublisher(fp, NewTopics("fleet"), 1, logger)

	// Run is not started, so the queue fills up.
	for i := 0; i < defaultEventQueueSize+3; i++ {
		p.HandleEvent(fleet.Event{Type: fleet.EventDeviceStatusChanged})
	}

	if warns, _ := logger.counts(); warns != 3 {
		t.Errorf("dropped warnings = %d, want 3", warns)
	}
	if len(fp.snapshot()) != 0 {
		t.Error("published without Run")
	}
}

func TestEventPublisher_IsFleetSink(t *testing.T) {
	fp := &fakePublisher{err: errors.New("unused")}
	var sink fleet.EventSink = NewEventPublisher(fp, Topics{}, 1, nil)
	sink.HandleEvent(fleet.Event{Type: fleet.EventDeviceRegistered})
}
