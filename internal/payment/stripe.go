package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	metaVenueID = "venue_id"
	metaOrderID = "order_id"
	metaTip     = "tip_cents"
)

// Stripe creates hosted Checkout sessions and verifies Stripe webhooks.
type Stripe struct {
	sessions      *session.Client
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return newStripe(stripe.GetBackend(stripe.APIBackend), secretKey, webhookSecret)
}

func newStripe(b stripe.Backend, secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		sessions:      &session.Client{B: b, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	const op = "payment.Stripe.CreateCheckout"

	currency := strings.ToLower(req.Currency)
	meta := map[string]string{
		metaVenueID: req.VenueID.String(),
		metaOrderID: req.OrderID.String(),
		metaTip:     strconv.FormatInt(req.TipCents, 10),
	}

	lines := []*stripe.CheckoutSessionLineItemParams{
		lineItem(currency, req.Description, req.AmountCents),
	}
	if req.TipCents > 0 {
		lines = append(lines, lineItem(currency, "Tip", req.TipCents))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.FailureURL),
		ClientReferenceID: stripe.String(req.OrderID.String()),
		LineItems:         lines,
		Metadata:          meta,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: meta,
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

func lineItem(currency, name string, cents int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
			UnitAmount: stripe.Int64(cents),
		},
		Quantity: stripe.Int64(1),
	}
}

// ParseWebhook handles the Checkout session lifecycle events. A completed
// session settles only once Stripe reports it paid; delayed methods settle
// on async_payment_succeeded.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*Event, error) {
	const op = "payment.Stripe.ParseWebhook"

	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrSignature, err)
	}

	var status domain.PaymentStatus
	switch string(ev.Type) {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		status = domain.PaymentSettled
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		status = domain.PaymentFailed
	default:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrIgnoredEvent, ev.Type)
	}

	if ev.Data == nil {
		return nil, fmt.Errorf("%s: %w: no data", op, ErrMalformed)
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	if status == domain.PaymentSettled && cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, fmt.Errorf("%s: %w: session %s not paid yet", op, ErrIgnoredEvent, cs.ID)
	}

	venueID, err := uuid.Parse(cs.Metadata[metaVenueID])
	if err != nil {
		return nil, fmt.Errorf("%s: %w: venue_id", op, ErrMalformed)
	}
	orderID, err := uuid.Parse(cs.Metadata[metaOrderID])
	if err != nil {
		return nil, fmt.Errorf("%s: %w: order_id", op, ErrMalformed)
	}

	var tip int64
	if raw := cs.Metadata[metaTip]; raw != "" {
		tip, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || tip < 0 {
			return nil, fmt.Errorf("%s: %w: tip", op, ErrMalformed)
		}
	}

	ref := cs.ID
	if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
		ref = cs.PaymentIntent.ID
	}

	return &Event{
		ID:          ev.ID,
		VenueID:     venueID,
		OrderID:     orderID,
		AmountCents: cs.AmountTotal,
		TipCents:    tip,
		Reference:   ref,
		Status:      status,
	}, nil
}
