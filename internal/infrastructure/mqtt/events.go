package mqtt

import (
	"context"
	"encoding/json"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

// defaultEventQueueSize bounds the events waiting to be published.
const defaultEventQueueSize = 256

// Publisher is the subset of *Client used by EventPublisher.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// EventPublisher forwards fleet events to the broker.
//
// Each event is published to {prefix}/event/{type}. When the event carries
// a device or action snapshot, the snapshot is also published retained to
// the device state or action status topic.
//
// The retained snapshots are best-effort. The fleet service emits events
// after releasing its lock, so they can arrive out of order; a snapshot
// older (by Event.Seq) than the last one published for the same device or
// action is skipped rather than allowed to overwrite it. A dropped or failed
// publish still leaves the retained message behind the registry until the
// next change.
//
// HandleEvent only enqueues; Run performs the publishes so a slow or
// disconnected broker never delays the fleet service. Events arriving while
// the queue is full are dropped with a warning.
type EventPublisher struct {
	pub    Publisher
	topics Topics
	qos    byte
	logger Logger
	queue  chan fleet.Event

	// Highest Seq published per retained topic. Touched only by Run.
	lastSeq map[string]uint64
}

var _ fleet.EventSink = (*EventPublisher)(nil)

// NewEventPublisher creates an EventPublisher. A nil logger discards
// publish failures.
func NewEventPublisher(pub Publisher, topics Topics, qos byte, logger Logger) *EventPublisher {
	return &EventPublisher{
		pub:     pub,
		topics:  topics,
		qos:     qos,
		logger:  logger,
		queue:   make(chan fleet.Event, defaultEventQueueSize),
		lastSeq: make(map[string]uint64),
	}
}

// HandleEvent queues ev for publishing.
func (p *EventPublisher) HandleEvent(ev fleet.Event) {
	select {
	case p.queue <- ev:
	default:
		if p.logger != nil {
			p.logger.Warn("MQTT event queue full, dropping event",
				"type", ev.Type,
				"device_id", ev.DeviceID,
				"action_id", ev.ActionID,
			)
		}
	}
}

// Run publishes queued events until ctx is cancelled.
func (p *EventPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			p.publish(ev)
		}
	}
}

// publish writes one event and its snapshots to the broker.
func (p *EventPublisher) publish(ev fleet.Event) {
	p.publishJSON(p.topics.Event(string(ev.Type)), ev, false)

	if ev.Device != nil {
		p.publishRetained(p.topics.DeviceState(ev.Device.ID), ev.Seq, ev.Device)
	}
	if ev.Action != nil {
		p.publishRetained(p.topics.ActionStatus(ev.Action.ID), ev.Seq, ev.Action)
	}
}

// publishRetained publishes a snapshot unless a newer one already went out
// on topic. Events without a Seq are always published.
func (p *EventPublisher) publishRetained(topic string, seq uint64, v any) {
	if seq != 0 {
		if seq < p.lastSeq[topic] {
			if p.logger != nil {
				p.logger.Warn("MQTT skipping stale snapshot", "topic", topic, "seq", seq)
			}
			return
		}
		p.lastSeq[topic] = seq
	}
	p.publishJSON(topic, v, true)
}

func (p *EventPublisher) publishJSON(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err == nil {
		err = p.pub.Publish(topic, payload, p.qos, retained)
	}
	if err != nil && p.logger != nil {
		p.logger.Warn("MQTT publish failed", "topic", topic, "error", err)
	}
}
