package kafkarepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher writes order events to a topic keyed by venue id, so all
// events of one venue land on the same partition in commit order.
type OrderPublisher struct {
	w messageWriter
}

func NewOrderPublisher(brokers []string, topic string) *OrderPublisher {
	return &OrderPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *OrderPublisher) Publish(ctx context.Context, ev domain.OrderEvent) error {
	const op = "kafkarepo.OrderPublisher.Publish"

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.VenueID.String()),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *OrderPublisher) Close() error {
	return p.w.Close()
}
