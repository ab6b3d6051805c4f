// Package notify distributes committed order changes: to external sinks
// through Fanout and to live kitchen display connections through Hub.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, ev domain.OrderEvent) error
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev domain.OrderEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Hub keeps the local subscribers of each venue. Slow subscribers drop
// events instead of blocking dispatch.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[chan domain.OrderEvent]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[chan domain.OrderEvent]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a listener for one venue. The returned cancel func
// must be called to release it.
func (h *Hub) Subscribe(venueID uuid.UUID) (<-chan domain.OrderEvent, func()) {
	ch := make(chan domain.OrderEvent, h.buffer)

	h.mu.Lock()
	if h.subs[venueID] == nil {
		h.subs[venueID] = make(map[chan domain.OrderEvent]struct{})
	}
	h.subs[venueID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[venueID], ch)
			if len(h.subs[venueID]) == 0 {
				delete(h.subs, venueID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Dispatch delivers ev to the subscribers of its venue only.
func (h *Hub) Dispatch(_ context.Context, ev domain.OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.VenueID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
