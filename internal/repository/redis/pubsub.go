package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/redis/go-redis/v9"
)

// OrdersPubSub fans order events out to every API instance, which in turn
// feed their kitchen display streams.
type OrdersPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewOrdersPubSub(rdb *redis.Client) *OrdersPubSub {
	return &OrdersPubSub{
		rdb:     rdb,
		channel: ChannelOrders(),
	}
}

func (p *OrdersPubSub) Publish(ctx context.Context, ev domain.OrderEvent) error {
	const op = "redisrepo.OrdersPubSub.Publish"

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Subscribe calls handler for every well-formed event until ctx is done.
func (p *OrdersPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev domain.OrderEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// Wait for the server to confirm the subscription.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.OrderEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.VenueID != uuid.Nil && ev.OrderID != uuid.Nil {
				handler(ctx, ev)
			}
		}
	}
}
