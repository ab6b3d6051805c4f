package postgresrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

type OrderRepo struct {
	scoped
}

func (r *OrderRepo) With(db DB) *OrderRepo {
	cp := *r
	cp.db = db
	return &cp
}

const orderColumns = `id, venue_id, table_id, status, total, tax_total, tip_amount,
	COALESCE(invoice_number, ''), created_at, updated_at`

const orderItemColumns = `id, order_id, menu_item_id, name, unit_price, tax_rate, quantity, modifiers, created_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(
		&o.ID, &o.VenueID, &o.TableID, &status, &o.TotalCents, &o.TaxTotalCents,
		&o.TipCents, &o.InvoiceNumber, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// Create inserts an empty DRAFT order for a table of the venue.
//
// Returns:
//   - error: repository.ErrConflict if the table is not part of the venue.
func (r *OrderRepo) Create(ctx context.Context, tableID uuid.UUID) (*domain.Order, error) {
	const op = "postgres.OrderRepo.Create"

	o := domain.Order{
		ID:      uuid.New(),
		VenueID: r.venueID,
		TableID: tableID,
		Status:  domain.OrderDraft,
	}

	err := r.handle().QueryRow(ctx, `
		INSERT INTO orders (id, venue_id, table_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, o.ID, o.VenueID, o.TableID, string(o.Status)).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const op = "postgres.OrderRepo.Get"

	w := r.where().and("id = ?", id)
	o, err := scanOrder(r.handle().QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders `+w.String(), w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return o, nil
}

// GetForUpdate reads the order and locks its row until the surrounding
// transaction ends. It must be called through With(tx).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const op = "postgres.OrderRepo.GetForUpdate"

	w := r.where().and("id = ?", id)
	o, err := scanOrder(r.handle().QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders `+w.String()+` FOR UPDATE`, w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return o, nil
}

func (r *OrderRepo) filter(f domain.OrderFilter) *clause {
	w := r.where()
	if f.Status != "" {
		w.and("status = ?", string(f.Status))
	}
	if f.TableID != uuid.Nil {
		w.and("table_id = ?", f.TableID)
	}
	if !f.Since.IsZero() {
		w.and("created_at >= ?", f.Since)
	}
	return w
}

// List returns the venue orders matching f, newest first.
func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter, limit, offset int) ([]domain.Order, error) {
	const op = "postgres.OrderRepo.List"

	w := r.filter(f)
	lim, off := w.arg(limit), w.arg(offset)

	rows, err := r.handle().Query(ctx,
		`SELECT `+orderColumns+` FROM orders `+w.String()+
			` ORDER BY created_at DESC, id LIMIT `+lim+` OFFSET `+off,
		w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *OrderRepo) Count(ctx context.Context, f domain.OrderFilter) (int64, error) {
	const op = "postgres.OrderRepo.Count"

	w := r.filter(f)
	var n int64
	if err := r.handle().QueryRow(ctx,
		`SELECT COUNT(*) FROM orders `+w.String(), w.Args()...,
	).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

// Summary groups the venue orders created since the given time by status and
// sums revenue and tips of settled orders.
func (r *OrderRepo) Summary(ctx context.Context, since time.Time) (*domain.OrderSummary, error) {
	const op = "postgres.OrderRepo.Summary"

	w := r.filter(domain.OrderFilter{Since: since})
	rows, err := r.handle().Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)::bigint, COALESCE(SUM(tip_amount), 0)::bigint
		FROM orders `+w.String()+`
		GROUP BY status
	`, w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	sum := &domain.OrderSummary{ByStatus: map[domain.OrderStatus]int64{}}
	for rows.Next() {
		var (
			status         string
			n, total, tips int64
		)
		if err := rows.Scan(&status, &n, &total, &tips); err != nil {
			return nil, wrapDBErr(op, err)
		}
		st := domain.OrderStatus(status)
		sum.ByStatus[st] = n
		if st.Settled() {
			sum.PaidOrders += n
			sum.RevenueCents += total
			sum.TipsCents += tips
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return sum, nil
}

func (r *OrderRepo) Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	const op = "postgres.OrderRepo.Items"

	w := r.where().and("order_id = ?", orderID)
	rows, err := r.handle().Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items `+w.String()+` ORDER BY created_at, id`,
		w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.UnitPriceCents,
			&it.TaxRateBP, &it.Quantity, &it.Modifiers, &it.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if it.Modifiers == nil {
			it.Modifiers = []string{}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// AddItem inserts a snapshot line. Price and tax rate are stored as given and
// never looked up again.
func (r *OrderRepo) AddItem(ctx context.Context, it *domain.OrderItem) error {
	const op = "postgres.OrderRepo.AddItem"

	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	if it.Modifiers == nil {
		it.Modifiers = []string{}
	}

	err := r.handle().QueryRow(ctx, `
		INSERT INTO order_items (id, venue_id, order_id, menu_item_id, name, unit_price, tax_rate, quantity, modifiers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, it.ID, r.venueID, it.OrderID, it.MenuItemID, it.Name, it.UnitPriceCents,
		it.TaxRateBP, it.Quantity, it.Modifiers).Scan(&it.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// UpdateTotals stores freshly computed totals together with the new status.
func (r *OrderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, total, tax int64, status domain.OrderStatus) error {
	const op = "postgres.OrderRepo.UpdateTotals"

	w := r.where().and("id = ?", id)
	q := `UPDATE orders SET total = ` + w.arg(total) +
		`, tax_total = ` + w.arg(tax) +
		`, status = ` + w.arg(string(status)) +
		`, updated_at = now() ` + w.String()

	return r.execOne(ctx, op, q, w.Args())
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	const op = "postgres.OrderRepo.UpdateStatus"

	w := r.where().and("id = ?", id)
	q := `UPDATE orders SET status = ` + w.arg(string(status)) + `, updated_at = now() ` + w.String()

	return r.execOne(ctx, op, q, w.Args())
}

// MarkPaid moves the order to PAID and records tip and invoice number.
func (r *OrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, tip int64, invoice string, at time.Time) error {
	const op = "postgres.OrderRepo.MarkPaid"

	w := r.where().and("id = ?", id)
	q := `UPDATE orders SET status = ` + w.arg(string(domain.OrderPaid)) +
		`, tip_amount = ` + w.arg(tip) +
		`, invoice_number = ` + w.arg(invoice) +
		`, paid_at = ` + w.arg(at) +
		`, updated_at = now() ` + w.String()

	return r.execOne(ctx, op, q, w.Args())
}
