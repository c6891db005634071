// Package events publishes the dispatcher's lifecycle events to
// Kafka. Publishing is best-effort: a nil Publisher makes publishing
// a no-op, and publish failures are never propagated - the dispatcher
// never depends on a broker being reachable for correctness.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"

	"github.com/fleetops/ride-dispatch/internal/logger"
)

// Topics used by the dispatcher.
var Topics = struct {
	BookingAssigned      string
	BookingAdmitted      string
	BookingLocked        string
	VehicleRouted        string
	VehicleRouteRejected string
	BookingUnassigned    string
}{
	BookingAssigned:      "dispatch.booking.assigned",
	BookingAdmitted:      "dispatch.booking.admitted",
	BookingLocked:        "dispatch.booking.locked",
	VehicleRouted:        "dispatch.vehicle.routed",
	VehicleRouteRejected: "dispatch.vehicle.route_rejected",
	BookingUnassigned:    "dispatch.booking.unassigned",
}

// Event is a single domain event.
type Event struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"`
	Source string      `json:"source"`
	Time   time.Time   `json:"time"`
	Data   interface{} `json:"data"`
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{ID: uuid.New().String(), Type: eventType, Source: "ride-dispatch", Time: time.Now().UTC(), Data: data}
}

// Publisher wraps a Kafka writer. A nil *Publisher is valid and makes
// every Publish call a no-op, so the dispatcher can run headless.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewPublisher dials no brokers up front; kafka-go connects lazily on
// first write.
func NewPublisher(brokers []string, log *logger.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
		log: log,
	}
}

// Publish fires and forgets: marshal errors and any error
// WriteMessages returns are logged, never propagated. The writer is
// asynchronous, so delivery failures after the call are not reported.
func (p *Publisher) Publish(ctx context.Context, topic string, event *Event) {
	if p == nil || p.writer == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		if p.log != nil {
			p.log.Warnw("failed to marshal event", "type", event.Type, "error", err)
		}
		return
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.ID),
		Value: data,
		Time:  event.Time,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		if p.log != nil {
			p.log.Warnw("failed to publish event", "topic", topic, "type", event.Type, "error", err)
		}
	}
}

// Close closes the underlying writer, if any.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
