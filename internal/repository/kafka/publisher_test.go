package kafkarepo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestOrderPublisher_KeysByVenue(t *testing.T) {
	w := &fakeWriter{}
	p := &OrderPublisher{w: w}

	ev := domain.OrderEvent{
		Type:    "order_paid",
		VenueID: uuid.New(),
		OrderID: uuid.New(),
		Status:  domain.OrderPaid,
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	assert.Equal(t, ev.VenueID.String(), string(w.msgs[0].Key))

	var got domain.OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestOrderPublisher_WriteError(t *testing.T) {
	p := &OrderPublisher{w: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), domain.OrderEvent{VenueID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
