// Package kafka publishes invocation events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/sagestream/pkg/eventstream"
)

var (
	// ErrNoBrokers is returned when no broker addresses are configured.
	ErrNoBrokers = errors.New("no kafka brokers configured")

	// ErrNoTopic is returned when no topic is configured.
	ErrNoTopic = errors.New("no kafka topic configured")
)

const (
	headerEventType     = "event_type"
	headerSchemaVersion = "schema_version"
)

// Writer is the subset of *kafkago.Writer used by Publisher.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures a Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes each invocation event as one JSON message keyed by
// endpoint name, so events for one endpoint stay ordered within a partition.
type Publisher struct {
	writer Writer
}

// NewPublisher creates a publisher backed by a kafka-go Writer.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}

	return NewPublisherWithWriter(&kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}), nil
}

// NewPublisherWithWriter creates a publisher that writes through w.
func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w}
}

// PublishInvocation encodes event as JSON and writes it synchronously.
func (p *Publisher) PublishInvocation(ctx context.Context, event *eventstream.InvocationEvent) error {
	if event == nil {
		return eventstream.ErrNilInvocationEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding invocation event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Endpoint.Name),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: headerEventType, Value: []byte(event.EventType)},
			{Key: headerSchemaVersion, Value: []byte(strconv.Itoa(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing invocation event %s: %w", event.EventID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
