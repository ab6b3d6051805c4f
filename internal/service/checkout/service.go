package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/payment"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	"github.com/kirinyoku/tableorder/internal/service/orders"
	"github.com/kirinyoku/tableorder/internal/uow"
)

const sessionIDBytes = 16

type Config struct {
	// PublicBaseURL is where guests are sent back after the hosted payment page.
	PublicBaseURL string
	TTL           time.Duration
}

type Service struct {
	store   *postgresrepo.Store
	uow     *uow.UoW
	orders  *orders.Service
	gateway payment.Gateway
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// New builds the checkout service. gateway may be nil, in which case Pay
// settles orders directly.
func New(
	store *postgresrepo.Store,
	ordersSvc *orders.Service,
	gateway payment.Gateway,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = domain.CheckoutTTL
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:   store,
		uow:     uow.NewUoW(store),
		orders:  ordersSvc,
		gateway: gateway,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Start stages a guest cart for the table behind tableToken. Totals are
// computed from current menu prices; the order created later snapshots the
// prices again.
//
// Parameters:
//   - ctx: request-scoped context.
//   - venueID: venue resolved from the guest request.
//   - tableToken: QR token of the table.
//   - lines: cart lines, each with quantity 1..99.
//
// Returns:
//   - *domain.Checkout: the PENDING checkout with its session id.
//   - error: orders.ErrTableNotFound if the token is not a table of the venue.
//   - error: orders.ErrMenuItemNotFound / ErrMenuItemUnavailable / ErrInvalidQuantity.
func (s *Service) Start(ctx context.Context, venueID uuid.UUID, tableToken string, lines []domain.CartLine) (*domain.Checkout, error) {
	const op = "service.checkout.Start"

	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	scope := s.store.Scope(venueID)

	table, err := scope.Tables().GetByToken(ctx, tableToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, orders.ErrTableNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	priced := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < orders.MinQuantity || l.Quantity > orders.MaxQuantity {
			return nil, fmt.Errorf("%s: %w", op, orders.ErrInvalidQuantity)
		}
		item, err := scope.Menu().Item(ctx, l.MenuItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, orders.ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !item.Available {
			return nil, fmt.Errorf("%s: %w", op, orders.ErrMenuItemUnavailable)
		}
		priced = append(priced, domain.OrderItem{
			UnitPriceCents: item.PriceCents,
			TaxRateBP:      item.TaxRateBP,
			Quantity:       l.Quantity,
		})
	}

	cart, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sid, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total, tax := domain.ComputeTotals(priced)
	c := &domain.Checkout{
		SessionID:     sid,
		TableID:       table.ID,
		Cart:          cart,
		TotalCents:    total,
		TaxTotalCents: tax,
		Status:        domain.CheckoutPending,
		ExpiresAt:     s.now().Add(s.cfg.TTL),
	}
	if err := scope.Checkouts().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// Resume returns a live checkout. Expired sessions are rejected even if the
// row still exists.
//
// Returns:
//   - error: checkout.ErrCheckoutNotFound if the session is unknown in the venue.
//   - error: checkout.ErrCheckoutExpired once expires_at has passed.
func (s *Service) Resume(ctx context.Context, venueID uuid.UUID, sessionID string) (*domain.Checkout, error) {
	const op = "service.checkout.Resume"

	c, err := s.store.Scope(venueID).Checkouts().GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCheckoutNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if c.Expired(s.now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrCheckoutExpired)
	}

	return c, nil
}

// Place turns the staged cart into an order and links it to the checkout,
// all in one transaction. Placing an already placed checkout returns the
// existing order.
func (s *Service) Place(ctx context.Context, venueID uuid.UUID, sessionID string) (*domain.OrderWithItems, error) {
	const op = "service.checkout.Place"

	var out *domain.OrderWithItems

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		scope := s.store.Scope(venueID).With(tx)

		c, err := s.lockLive(ctx, scope, sessionID)
		if err != nil {
			return err
		}

		if c.OrderID != nil {
			o, err := scope.Orders().Get(ctx, *c.OrderID)
			if err != nil {
				return err
			}
			items, err := scope.Orders().Items(ctx, o.ID)
			if err != nil {
				return err
			}
			out = &domain.OrderWithItems{Order: *o, Items: items}
			return nil
		}

		if c.Status != domain.CheckoutPending {
			return ErrCheckoutClosed
		}

		var lines []domain.CartLine
		if err := json.Unmarshal(c.Cart, &lines); err != nil {
			return fmt.Errorf("decode cart: %w", err)
		}

		out, err = s.orders.PlaceTx(ctx, tx, after, venueID, c.TableID, lines)
		if err != nil {
			return err
		}

		return scope.Checkouts().LinkOrder(ctx, c.ID, out.Order.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) lockLive(ctx context.Context, scope *postgresrepo.Scope, sessionID string) (*domain.Checkout, error) {
	c, err := scope.Checkouts().GetBySessionForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}
	if c.Expired(s.now()) {
		return nil, ErrCheckoutExpired
	}
	return c, nil
}

type PayInput struct {
	TipCents       int64
	IdempotencyKey string
}

// PayResult carries either a provider redirect or the direct settlement.
type PayResult struct {
	RedirectURL string               `json:"redirect_url,omitempty"`
	Settlement  *orders.SettleResult `json:"settlement,omitempty"`
}

// Pay places the checkout if needed, records the tip and either opens a
// hosted payment page or, without a provider, settles the order directly.
//
// Returns:
//   - error: orders.ErrInvalidTip if the tip is negative.
//   - error: checkout.ErrCheckoutNotFound / ErrCheckoutExpired.
//   - error: orders.ErrAlreadySettled for a direct retry without idempotency key.
func (s *Service) Pay(ctx context.Context, venueID uuid.UUID, sessionID string, in PayInput) (*PayResult, error) {
	const op = "service.checkout.Pay"

	if in.TipCents < 0 {
		return nil, fmt.Errorf("%s: %w", op, orders.ErrInvalidTip)
	}

	placed, err := s.Place(ctx, venueID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	scope := s.store.Scope(venueID)

	c, err := scope.Checkouts().GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.Status == domain.CheckoutPending || c.Status == domain.CheckoutProcessing {
		if err := scope.Checkouts().SetTip(ctx, c.ID, in.TipCents); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if s.gateway == nil {
		res, err := s.orders.SettleDirect(ctx, venueID, placed.Order.ID, in.TipCents, in.IdempotencyKey, orders.Actor{})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &PayResult{Settlement: res}, nil
	}

	if placed.Order.Status.Settled() {
		return nil, fmt.Errorf("%s: %w", op, orders.ErrAlreadySettled)
	}

	venue, err := s.store.Venues().Get(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	back := fmt.Sprintf("%s/t/%s/checkout/%s", s.cfg.PublicBaseURL, venueID, sessionID)
	sess, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		VenueID:        venueID,
		OrderID:        placed.Order.ID,
		AmountCents:    placed.Order.TotalCents,
		TipCents:       in.TipCents,
		Currency:       venue.Currency,
		Description:    fmt.Sprintf("%s order %s", venue.Name, placed.Order.ID.String()[:8]),
		SuccessURL:     back + "?status=success",
		FailureURL:     back + "?status=cancelled",
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PayResult{RedirectURL: sess.URL}, nil
}

// HandleWebhook verifies a provider notification and applies it. Settled
// payments go through order settlement, which absorbs redeliveries; failed
// ones mark the linked checkout FAILED. Event types that do not concern
// order payments are acknowledged and ignored.
//
// Returns:
//   - *orders.SettleResult: set for settled payments, nil otherwise.
//   - error: payment.ErrSignature if the payload is not authentic.
//   - error: checkout.ErrNoGateway if no provider is configured.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*orders.SettleResult, error) {
	const op = "service.checkout.HandleWebhook"

	if s.gateway == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoGateway)
	}

	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrIgnoredEvent) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch ev.Status {
	case domain.PaymentSettled:
		res, err := s.orders.Settle(ctx, orders.Settlement{
			VenueID:     ev.VenueID,
			OrderID:     ev.OrderID,
			TipCents:    ev.TipCents,
			AmountCents: ev.AmountCents,
			Provider:    s.gateway.Name(),
			Reference:   ev.Reference,
			EventID:     ev.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		switch {
		case res.Duplicate:
			s.logger.Info("duplicate payment event ignored", "event_id", ev.ID, "order_id", ev.OrderID)
		case res.Underpaid:
			s.logger.Warn("payment below order amount, order left open",
				"event_id", ev.ID, "order_id", ev.OrderID, "provider_amount", ev.AmountCents,
				"order_amount", res.Order.TotalCents+ev.TipCents)
		case ev.AmountCents > res.Order.TotalCents+res.Order.TipCents:
			s.logger.Warn("payment above order amount",
				"event_id", ev.ID, "order_id", ev.OrderID, "provider_amount", ev.AmountCents,
				"order_amount", res.Order.TotalCents+res.Order.TipCents)
		}
		return res, nil

	case domain.PaymentFailed:
		n, err := s.store.Scope(ev.VenueID).Checkouts().FailForOrder(ctx, ev.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.logger.Info("payment failed", "event_id", ev.ID, "order_id", ev.OrderID, "checkouts", n)
		return nil, nil

	default:
		return nil, fmt.Errorf("%s: %w", op, payment.ErrMalformed)
	}
}
