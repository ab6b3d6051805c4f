package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/notify"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tableorder/internal/repository/redis"
	"github.com/kirinyoku/tableorder/internal/uow"
)

const (
	MinQuantity = 1
	MaxQuantity = 99

	EventCreated = "order_created"
	EventUpdated = "order_updated"
	EventPaid    = "order_paid"
	EventStatus  = "order_status_changed"

	EventUnderpaid = "payment_underpaid"
)

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// RequireGateway limits settlement outside the payment provider to
	// staff. Set whenever a provider is configured.
	RequireGateway bool
}

type Service struct {
	store   *postgresrepo.Store
	uow     *uow.UoW
	events  notify.Publisher
	limiter *redisrepo.SlidingWindowLimiter
	idem    *redisrepo.IdempotencyStore
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

func New(
	store *postgresrepo.Store,
	events notify.Publisher,
	limiter *redisrepo.SlidingWindowLimiter,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}

	if cfg.MaxPageSize <= 0 || cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = 200
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:   store,
		uow:     uow.NewUoW(store),
		events:  events,
		limiter: limiter,
		idem:    idem,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// publish returns an after-commit hook that emits ev. Delivery failures are
// logged; the committed change stands.
func (s *Service) publish(typ string, o domain.Order) uow.AfterCommit {
	return func(ctx context.Context) {
		if s.events == nil {
			return
		}
		ev := domain.OrderEvent{
			Type:    typ,
			VenueID: o.VenueID,
			OrderID: o.ID,
			TableID: o.TableID,
			Status:  o.Status,
			TsUnix:  s.now().Unix(),
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish order event failed",
				"type", typ, "venue_id", o.VenueID, "order_id", o.ID, "error", err)
		}
	}
}

// CreateOrder opens an empty order for the table behind qrToken.
//
// Parameters:
//   - ctx: request-scoped context.
//   - venueID: venue resolved from the request.
//   - qrToken: table token scanned by the guest.
//   - clientKey: rate limit key, usually the client IP. Empty disables the check.
//
// Returns:
//   - *domain.Order: the new DRAFT order.
//   - error: orders.ErrTableNotFound if the token does not belong to the venue.
//   - error: orders.ErrRateLimited if the client exceeded its budget.
func (s *Service) CreateOrder(ctx context.Context, venueID uuid.UUID, qrToken, clientKey string) (*domain.Order, error) {
	const op = "service.orders.CreateOrder"

	if s.limiter != nil && clientKey != "" {
		d, err := s.limiter.Allow(ctx, venueID.String()+":"+clientKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !d.Allowed {
			return nil, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	var order *domain.Order

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		scope := s.store.Scope(venueID).With(tx)

		table, err := scope.Tables().GetByToken(ctx, qrToken)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		order, err = scope.Orders().Create(ctx, table.ID)
		if err != nil {
			return err
		}

		after(s.publish(EventCreated, *order))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

type AttachItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	Modifiers  []string
}

// AttachItem adds a menu item to an order and recomputes its totals in one
// transaction. The order row is locked first so concurrent attaches to the
// same order serialize and each sees the lines of the previous one.
//
// Returns:
//   - error: orders.ErrInvalidQuantity if quantity is outside 1..99.
//   - error: orders.ErrOrderNotFound if the order is not in the venue.
//   - error: orders.ErrOrderNotEditable unless the order is DRAFT or OPEN.
//   - error: orders.ErrMenuItemNotFound / ErrMenuItemUnavailable.
func (s *Service) AttachItem(ctx context.Context, venueID, orderID uuid.UUID, in AttachItemInput) (*domain.OrderWithItems, error) {
	const op = "service.orders.AttachItem"

	if err := validateLine(in.Quantity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out *domain.OrderWithItems

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		scope := s.store.Scope(venueID).With(tx)

		order, err := scope.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		out, err = s.attach(ctx, scope, order, []AttachItemInput{in})
		if err != nil {
			return err
		}

		after(s.publish(EventUpdated, out.Order))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// PlaceTx creates an order for tableID and attaches lines inside tx.
// It is the building block for turning a checkout cart into an order.
func (s *Service) PlaceTx(
	ctx context.Context,
	tx postgresrepo.DB,
	after func(uow.AfterCommit),
	venueID, tableID uuid.UUID,
	lines []domain.CartLine,
) (*domain.OrderWithItems, error) {
	const op = "service.orders.PlaceTx"

	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	ins := make([]AttachItemInput, 0, len(lines))
	for _, l := range lines {
		if err := validateLine(l.Quantity); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ins = append(ins, AttachItemInput{MenuItemID: l.MenuItemID, Quantity: l.Quantity, Modifiers: l.Modifiers})
	}

	scope := s.store.Scope(venueID).With(tx)

	order, err := scope.Orders().Create(ctx, tableID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrTableNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.attach(ctx, scope, order, ins)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	after(s.publish(EventCreated, out.Order))
	return out, nil
}

// attach inserts snapshot lines for a locked order, re-sums every line from
// scratch and moves the order to OPEN.
func (s *Service) attach(
	ctx context.Context,
	scope *postgresrepo.Scope,
	order *domain.Order,
	ins []AttachItemInput,
) (*domain.OrderWithItems, error) {
	if order.Status != domain.OrderDraft && order.Status != domain.OrderOpen {
		return nil, ErrOrderNotEditable
	}

	for _, in := range ins {
		item, err := scope.Menu().Item(ctx, in.MenuItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrMenuItemNotFound
			}
			return nil, err
		}
		if !item.Available {
			return nil, ErrMenuItemUnavailable
		}

		line := &domain.OrderItem{
			OrderID:        order.ID,
			MenuItemID:     item.ID,
			Name:           item.Name,
			UnitPriceCents: item.PriceCents,
			TaxRateBP:      item.TaxRateBP,
			Quantity:       in.Quantity,
			Modifiers:      in.Modifiers,
		}
		if err := scope.Orders().AddItem(ctx, line); err != nil {
			return nil, err
		}
	}

	items, err := scope.Orders().Items(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	total, tax := domain.ComputeTotals(items)
	if err := scope.Orders().UpdateTotals(ctx, order.ID, total, tax, domain.OrderOpen); err != nil {
		return nil, err
	}

	order.TotalCents = total
	order.TaxTotalCents = tax
	order.Status = domain.OrderOpen

	return &domain.OrderWithItems{Order: *order, Items: items}, nil
}

func validateLine(qty int) error {
	if qty < MinQuantity || qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, venueID, orderID uuid.UUID) (*domain.OrderWithItems, error) {
	const op = "service.orders.GetOrder"

	scope := s.store.Scope(venueID)

	o, err := scope.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := scope.Orders().Items(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []domain.OrderItem{}
	}

	return &domain.OrderWithItems{Order: *o, Items: items}, nil
}

type Page struct {
	Orders   []domain.Order `json:"orders"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ListOrders returns one page of the venue orders, newest first.
func (s *Service) ListOrders(ctx context.Context, venueID uuid.UUID, f domain.OrderFilter, page, pageSize int) (*Page, error) {
	const op = "service.orders.ListOrders"

	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if page < 1 {
		page = 1
	}

	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}

	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	repo := s.store.Scope(venueID).Orders()

	list, err := repo.List(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []domain.Order{}
	}

	total, err := repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Page{Orders: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) Summary(ctx context.Context, venueID uuid.UUID, since time.Time) (*domain.OrderSummary, error) {
	const op = "service.orders.Summary"

	sum, err := s.store.Scope(venueID).Orders().Summary(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sum, nil
}

// Actor tells UpdateStatus and SettleDirect who asks for a change.
type Actor struct {
	Staff bool
}

func (s *Service) mayBypassGateway(a Actor) bool {
	return a.Staff || !s.cfg.RequireGateway
}

// UpdateStatus moves an order to status to. Staff may perform any legal
// transition; guests only OPEN to PAID or CANCELLED, and OPEN to PAID only
// while no payment provider is configured. PAID is always reached through
// settlement so an invoice and a payment row exist for it.
//
// Returns:
//   - error: orders.ErrTransitionForbidden if a guest asks for a staff transition.
//   - error: orders.ErrInvalidTransition if the transition is illegal.
//   - error: orders.ErrAlreadySettled if the order is paid and to is PAID.
func (s *Service) UpdateStatus(ctx context.Context, venueID, orderID uuid.UUID, to domain.OrderStatus, actor Actor) (*domain.Order, error) {
	const op = "service.orders.UpdateStatus"

	if !to.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if to == domain.OrderPaid {
		if !s.mayBypassGateway(actor) {
			return nil, fmt.Errorf("%s: %w", op, ErrTransitionForbidden)
		}
		provider := ProviderDirect
		if actor.Staff {
			provider = ProviderManual
		}
		res, err := s.Settle(ctx, Settlement{VenueID: venueID, OrderID: orderID, Provider: provider})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &res.Order, nil
	}

	var order *domain.Order

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		repo := s.store.Scope(venueID).With(tx).Orders()

		o, err := repo.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !domain.CanTransition(o.Status, to) {
			return ErrInvalidTransition
		}
		if !actor.Staff && !domain.GuestCanTransition(o.Status, to) {
			return ErrTransitionForbidden
		}

		if err := repo.UpdateStatus(ctx, o.ID, to); err != nil {
			return err
		}

		o.Status = to
		o.UpdatedAt = s.now()
		order = o

		after(s.publish(EventStatus, *o))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}
