package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

type CheckoutRepo struct {
	scoped
}

func (r *CheckoutRepo) With(db DB) *CheckoutRepo {
	cp := *r
	cp.db = db
	return &cp
}

const checkoutColumns = `id, venue_id, session_id, table_id, order_id, cart, total, tax_total, tip_amount, status, expires_at, created_at`

func scanCheckout(row interface{ Scan(dest ...any) error }) (*domain.Checkout, error) {
	var (
		c      domain.Checkout
		cart   []byte
		status string
	)
	if err := row.Scan(
		&c.ID, &c.VenueID, &c.SessionID, &c.TableID, &c.OrderID, &cart,
		&c.TotalCents, &c.TaxTotalCents, &c.TipCents, &status, &c.ExpiresAt, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.Cart = cart
	c.Status = domain.CheckoutStatus(status)
	return &c, nil
}

// Create inserts c under the scope venue. Any VenueID set on c is overwritten.
//
// Returns:
//   - error: repository.ErrConflict if the session id already exists.
func (r *CheckoutRepo) Create(ctx context.Context, c *domain.Checkout) error {
	const op = "postgres.CheckoutRepo.Create"

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.VenueID = r.venueID
	if c.Status == "" {
		c.Status = domain.CheckoutPending
	}

	err := r.handle().QueryRow(ctx, `
		INSERT INTO checkouts (id, venue_id, session_id, table_id, cart, total, tax_total, tip_amount, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, c.ID, c.VenueID, c.SessionID, c.TableID, []byte(c.Cart), c.TotalCents,
		c.TaxTotalCents, c.TipCents, string(c.Status), c.ExpiresAt).Scan(&c.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CheckoutRepo) GetBySession(ctx context.Context, sessionID string) (*domain.Checkout, error) {
	const op = "postgres.CheckoutRepo.GetBySession"

	w := r.where().and("session_id = ?", sessionID)
	c, err := scanCheckout(r.handle().QueryRow(ctx,
		`SELECT `+checkoutColumns+` FROM checkouts `+w.String(), w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return c, nil
}

// GetBySessionForUpdate is GetBySession with a row lock.
func (r *CheckoutRepo) GetBySessionForUpdate(ctx context.Context, sessionID string) (*domain.Checkout, error) {
	const op = "postgres.CheckoutRepo.GetBySessionForUpdate"

	w := r.where().and("session_id = ?", sessionID)
	c, err := scanCheckout(r.handle().QueryRow(ctx,
		`SELECT `+checkoutColumns+` FROM checkouts `+w.String()+` FOR UPDATE`, w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return c, nil
}

// LinkOrder attaches the placed order and moves the checkout to PROCESSING.
func (r *CheckoutRepo) LinkOrder(ctx context.Context, id, orderID uuid.UUID) error {
	const op = "postgres.CheckoutRepo.LinkOrder"

	w := r.where().and("id = ?", id)
	q := `UPDATE checkouts SET order_id = ` + w.arg(orderID) +
		`, status = ` + w.arg(string(domain.CheckoutProcessing)) + ` ` + w.String()

	return r.execOne(ctx, op, q, w.Args())
}

func (r *CheckoutRepo) SetTip(ctx context.Context, id uuid.UUID, tip int64) error {
	const op = "postgres.CheckoutRepo.SetTip"

	w := r.where().and("id = ?", id)
	q := `UPDATE checkouts SET tip_amount = ` + w.arg(tip) + ` ` + w.String()

	return r.execOne(ctx, op, q, w.Args())
}

// CompleteForOrder marks the checkout linked to orderID as COMPLETED and
// returns how many rows changed. Orders placed without a checkout yield 0.
func (r *CheckoutRepo) CompleteForOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	const op = "postgres.CheckoutRepo.CompleteForOrder"

	w := r.where().and("order_id = ?", orderID)
	q := `UPDATE checkouts SET status = ` + w.arg(string(domain.CheckoutCompleted)) + ` ` + w.String()

	tag, err := r.handle().Exec(ctx, q, w.Args()...)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// FailForOrder marks the checkout linked to orderID as FAILED unless it has
// already completed.
func (r *CheckoutRepo) FailForOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	const op = "postgres.CheckoutRepo.FailForOrder"

	w := r.where().and("order_id = ?", orderID).and("status <> ?", string(domain.CheckoutCompleted))
	q := `UPDATE checkouts SET status = ` + w.arg(string(domain.CheckoutFailed)) + ` ` + w.String()

	tag, err := r.handle().Exec(ctx, q, w.Args()...)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}
