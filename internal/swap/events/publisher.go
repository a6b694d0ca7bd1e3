package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github/chapool/chainswap/internal/swap/history"
)

const (
	TypeSwapRecorded = "swap.recorded"

	writeBatchTimeout = 10 * time.Millisecond
)

// Event is the message value written for every appended swap record
type Event struct {
	Type   string              `json:"type"`
	Record *history.SwapRecord `json:"record"`
}

// Publisher announces swap records to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, rec *history.SwapRecord) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer MessageWriter
}

// NewKafka publishes to topic. Messages are keyed by the inbound hash so all events of
// one deposit land on the same partition.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKafka(brokers []string, topic string) Publisher {
	return NewWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           writeBatchTimeout,
	})
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewWithWriter(w MessageWriter) Publisher {
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, rec *history.SwapRecord) error {
	payload, err := json.Marshal(Event{Type: TypeSwapRecorded, Record: rec})
	if err != nil {
		return errors.Wrap(err, "failed to marshal swap event")
	}

	msg := kafka.Message{
		Key:   []byte(rec.TxHashIn),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeSwapRecorded)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to write swap event")
	}

	return nil
}

func (p *kafkaPublisher) Close() error {
	return errors.Wrap(p.writer.Close(), "failed to close kafka writer")
}

type noopPublisher struct{}

// NewNoop returns a Publisher that drops every event
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewNoop() Publisher {
	log.Debug().Str("component", "events").Msg("Swap events disabled")
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *history.SwapRecord) error { return nil }

func (noopPublisher) Close() error { return nil }
