// Package payment hides the payment provider behind Gateway. Settlement only
// ever sees an Event: provider event id, venue, order, amount, tip and status.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

var (
	ErrSignature    = errors.New("invalid webhook signature")
	ErrIgnoredEvent = errors.New("event type ignored")
	ErrMalformed    = errors.New("malformed webhook event")
)

// CheckoutRequest describes one hosted payment page for an order.
type CheckoutRequest struct {
	VenueID        uuid.UUID
	OrderID        uuid.UUID
	AmountCents    int64
	TipCents       int64
	Currency       string
	Description    string
	SuccessURL     string
	FailureURL     string
	IdempotencyKey string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified provider notification about an order payment.
type Event struct {
	ID          string
	VenueID     uuid.UUID
	OrderID     uuid.UUID
	AmountCents int64
	TipCents    int64
	Reference   string
	Status      domain.PaymentStatus
}

type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook verifies signature and decodes payload. Events that do
	// not concern order payments return ErrIgnoredEvent.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
