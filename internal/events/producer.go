package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order lifecycle events. Publishing is fire-and-forget:
// a broker outage must never fail the order operation that triggered it.
type Publisher interface {
	Publish(event Envelope)
	Close() error
}

// NopPublisher discards all events. Used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(Envelope) {}
func (NopPublisher) Close() error     { return nil }

// KafkaPublisher writes envelopes to a Kafka topic through a buffered inbox
// drained by a single goroutine.
type KafkaPublisher struct {
	writer *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher and starts its drain goroutine.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, 256),
		done:   make(chan struct{}),
		logger: logger.With().Str("publisher", "kafka").Logger(),
	}

	go p.drain(ctx)
	return p
}

func (p *KafkaPublisher) drain(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			// Flush whatever is already queued, then exit.
			for {
				select {
				case m, ok := <-p.inbox:
					if !ok {
						return
					}
					p.write(m)
				default:
					return
				}
			}
		case m, ok := <-p.inbox:
			if !ok {
				return
			}
			p.write(m)
		}
	}
}

func (p *KafkaPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, m); err != nil {
		p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("failed to publish event")
	}
}

// Publish queues an event. Drops the event with a warning when the inbox is
// full rather than blocking the caller.
func (p *KafkaPublisher) Publish(event Envelope) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", event.EventType).Msg("failed to marshal event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Time:  event.OccurredAt,
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("event_type", event.EventType).Msg("event inbox full, dropping event")
	}
}

// Close stops accepting events, waits for the drain goroutine to flush, and
// closes the writer. Publish must not be called after Close.
func (p *KafkaPublisher) Close() error {
	close(p.inbox)
	<-p.done
	return p.writer.Close()
}
