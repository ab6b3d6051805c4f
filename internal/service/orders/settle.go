package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tableorder/internal/repository/redis"
	"github.com/kirinyoku/tableorder/internal/uow"
)

const (
	ProviderDirect = "direct"
	ProviderManual = "manual"
)

// errDuplicateEvent aborts the settlement transaction when the unique index
// on provider_event_id rejects the payment insert.
var errDuplicateEvent = errors.New("provider event already processed")

// Settlement is everything the core needs to settle an order. EventID is
// set for provider notifications and empty for direct settlement.
// AmountCents is what the provider collected, tip included; it is only
// read for provider notifications.
type Settlement struct {
	VenueID     uuid.UUID
	OrderID     uuid.UUID
	TipCents    int64
	AmountCents int64
	Provider    string
	Reference   string
	EventID     string
}

type SettleResult struct {
	Order     domain.Order    `json:"order"`
	Payment   *domain.Payment `json:"payment,omitempty"`
	Duplicate bool            `json:"duplicate"`
	// Underpaid is set when the provider collected less than the order
	// owes. The order stays OPEN and Payment records the FAILED collection.
	Underpaid bool `json:"underpaid,omitempty"`
}

// Settle marks an order PAID in one transaction: lock the order, draw the
// next venue invoice number, record tip, invoice and paid_at, insert the
// SETTLED payment for total + tip and complete the linked checkout. Either
// all of it commits or none of it does.
//
// A provider event that was already processed, or that arrives for an order
// that is already settled, is absorbed: the result has Duplicate set, carries
// the current order and nothing is written. Direct settlement of a settled
// order fails with ErrAlreadySettled.
//
// A provider event whose amount is below total + tip does not settle. The
// collection is recorded as a FAILED payment, the linked checkout is marked
// FAILED and the order stays OPEN for staff to resolve.
//
// Returns:
//   - error: orders.ErrInvalidTip if the tip is negative.
//   - error: orders.ErrOrderNotFound if the order is not in the venue.
//   - error: orders.ErrAlreadySettled for a direct settle of a paid order.
//   - error: orders.ErrInvalidTransition if the order is not OPEN.
func (s *Service) Settle(ctx context.Context, in Settlement) (*SettleResult, error) {
	const op = "service.orders.Settle"

	if in.TipCents < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTip)
	}
	if in.Provider == "" {
		in.Provider = ProviderDirect
	}

	var res SettleResult

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		res = SettleResult{}
		scope := s.store.Scope(in.VenueID).With(tx)

		if in.EventID != "" {
			seen, err := scope.Payments().EventProcessed(ctx, in.EventID)
			if err != nil {
				return err
			}
			if seen {
				order, err := scope.Orders().Get(ctx, in.OrderID)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return ErrOrderNotFound
					}
					return err
				}
				res.Order = *order
				res.Duplicate = true
				return nil
			}
		}

		order, err := scope.Orders().GetForUpdate(ctx, in.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.Status.Settled() {
			if in.EventID != "" {
				res.Order = *order
				res.Duplicate = true
				return nil
			}
			return ErrAlreadySettled
		}
		if order.Status != domain.OrderOpen {
			return ErrInvalidTransition
		}

		if in.EventID != "" && in.AmountCents < order.TotalCents+in.TipCents {
			failed := &domain.Payment{
				OrderID:         order.ID,
				Provider:        in.Provider,
				Reference:       in.Reference,
				ProviderEventID: in.EventID,
				Status:          domain.PaymentFailed,
				AmountCents:     in.AmountCents,
			}
			if err := scope.Payments().Create(ctx, failed); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return errDuplicateEvent
				}
				return err
			}
			if _, err := scope.Checkouts().FailForOrder(ctx, order.ID); err != nil {
				return err
			}

			res.Order = *order
			res.Payment = failed
			res.Underpaid = true

			after(s.publish(EventUnderpaid, *order))
			return nil
		}

		seq, err := s.store.Venues().With(tx).NextInvoiceSeq(ctx, in.VenueID)
		if err != nil {
			return err
		}

		now := s.now()
		invoice := domain.InvoiceNumber(now, seq)

		if err := scope.Orders().MarkPaid(ctx, order.ID, in.TipCents, invoice, now); err != nil {
			return err
		}

		reference := in.Reference
		if reference == "" {
			reference = invoice
		}

		payment := &domain.Payment{
			OrderID:         order.ID,
			Provider:        in.Provider,
			Reference:       reference,
			ProviderEventID: in.EventID,
			Status:          domain.PaymentSettled,
			AmountCents:     order.TotalCents + in.TipCents,
		}
		if err := scope.Payments().Create(ctx, payment); err != nil {
			if in.EventID != "" && errors.Is(err, repository.ErrConflict) {
				return errDuplicateEvent
			}
			return err
		}

		if _, err := scope.Checkouts().CompleteForOrder(ctx, order.ID); err != nil {
			return err
		}

		order.Status = domain.OrderPaid
		order.TipCents = in.TipCents
		order.InvoiceNumber = invoice
		order.UpdatedAt = now

		res.Order = *order
		res.Payment = payment

		after(s.publish(EventPaid, *order))
		return nil
	})
	if errors.Is(err, errDuplicateEvent) {
		// The concurrent delivery that won has committed; report its result.
		order, err := s.store.Scope(in.VenueID).Orders().Get(ctx, in.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &SettleResult{Order: *order, Duplicate: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &res, nil
}

// SettleDirect settles an order without a payment provider. A non-empty
// idemKey makes retries of the same request return the first response
// instead of failing with ErrAlreadySettled.
//
// Returns:
//   - error: orders.ErrTransitionForbidden if a guest settles while a provider is configured.
func (s *Service) SettleDirect(ctx context.Context, venueID, orderID uuid.UUID, tip int64, idemKey string, actor Actor) (*SettleResult, error) {
	const op = "service.orders.SettleDirect"

	if !s.mayBypassGateway(actor) {
		return nil, fmt.Errorf("%s: %w", op, ErrTransitionForbidden)
	}

	in := Settlement{VenueID: venueID, OrderID: orderID, TipCents: tip, Provider: ProviderDirect}

	if s.idem == nil || idemKey == "" {
		return s.Settle(ctx, in)
	}

	key := redisrepo.KeyIdemSettle(venueID, orderID, idemKey)

	stored, replay, err := s.idem.Begin(ctx, key)
	if err != nil {
		if errors.Is(err, redisrepo.ErrInFlight) {
			return nil, fmt.Errorf("%s: %w", op, ErrRequestInFlight)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if replay {
		var res SettleResult
		if err := json.Unmarshal(stored, &res); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &res, nil
	}

	res, err := s.Settle(ctx, in)
	if err != nil {
		_ = s.idem.Release(ctx, key)
		return nil, err
	}

	if b, err := json.Marshal(res); err == nil {
		if err := s.idem.Complete(ctx, key, b); err != nil {
			s.logger.Warn("store idempotent result failed", "key", key, "error", err)
		}
	}

	return res, nil
}
