package checkout

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/payment"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	"github.com/kirinyoku/tableorder/internal/service/orders"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	checkoutCols = []string{"id", "venue_id", "session_id", "table_id", "order_id", "cart", "total", "tax_total", "tip_amount", "status", "expires_at", "created_at"}
	orderCols    = []string{"id", "venue_id", "table_id", "status", "total", "tax_total", "tip_amount", "invoice_number", "created_at", "updated_at"}
	itemCols     = []string{"id", "order_id", "menu_item_id", "name", "unit_price", "tax_rate", "quantity", "modifiers", "created_at"}
	menuItemCols = []string{"id", "venue_id", "category_id", "name", "description", "price", "tax_rate", "allergens", "available", "position"}
	tableCols    = []string{"id", "venue_id", "area_id", "name", "qr_token", "created_at"}
)

type fakeGateway struct {
	event *payment.Event
	err   error
	req   payment.CheckoutRequest
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.req = req
	return &payment.CheckoutSession{ID: "cs_1", URL: "https://pay.example.com/cs_1"}, nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, _ string) (*payment.Event, error) {
	return g.event, g.err
}

type fixture struct {
	mock    pgxmock.PgxPoolIface
	svc     *Service
	venueID uuid.UUID
	tableID uuid.UUID
	now     time.Time
}

func newFixture(t *testing.T, gw payment.Gateway) *fixture {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := postgresrepo.NewStore(mock)
	ordersSvc := orders.New(store, nil, nil, nil, logger, orders.Config{})

	f := &fixture{
		mock:    mock,
		svc:     New(store, ordersSvc, gw, logger, Config{PublicBaseURL: "https://order.example.com/"}),
		venueID: uuid.New(),
		tableID: uuid.New(),
		now:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.now }

	return f
}

func (f *fixture) checkoutRow(sid string, orderID *uuid.UUID, cart []byte, status domain.CheckoutStatus, expires time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(checkoutCols).AddRow(
		uuid.New(), f.venueID, sid, f.tableID, orderID, cart,
		int64(2500), int64(0), int64(0), string(status), expires, f.now.Add(-time.Minute),
	)
}

func TestStart_StagesCart(t *testing.T) {
	f := newFixture(t, nil)
	pasta := uuid.New()

	f.mock.ExpectQuery(`FROM tables WHERE venue_id = \$1 AND qr_token = \$2`).
		WithArgs(f.venueID, "tok").
		WillReturnRows(pgxmock.NewRows(tableCols).AddRow(f.tableID, f.venueID, nil, "T1", "tok", f.now))
	f.mock.ExpectQuery(`FROM menu_items WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(f.venueID, pasta).
		WillReturnRows(pgxmock.NewRows(menuItemCols).
			AddRow(pasta, f.venueID, uuid.New(), "Pasta", "", int64(1250), 1000, []string{}, true, 0))
	f.mock.ExpectQuery(`INSERT INTO checkouts`).
		WithArgs(pgxmock.AnyArg(), f.venueID, pgxmock.AnyArg(), f.tableID, pgxmock.AnyArg(),
			int64(2500), int64(227), int64(0), "PENDING", f.now.Add(30*time.Minute)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(f.now))

	c, err := f.svc.Start(context.Background(), f.venueID, "tok", []domain.CartLine{{MenuItemID: pasta, Quantity: 2}})
	require.NoError(t, err)

	assert.Len(t, c.SessionID, 32)
	assert.Equal(t, int64(2500), c.TotalCents)
	assert.Equal(t, domain.CheckoutPending, c.Status)
	assert.Equal(t, f.venueID, c.VenueID)

	var lines []domain.CartLine
	require.NoError(t, json.Unmarshal(c.Cart, &lines))
	assert.Equal(t, pasta, lines[0].MenuItemID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestStart_Rejections(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Start(context.Background(), f.venueID, "tok", nil)
	require.ErrorIs(t, err, ErrEmptyCart)

	f.mock.ExpectQuery(`FROM tables WHERE venue_id = \$1 AND qr_token = \$2`).
		WithArgs(f.venueID, "other-venue").
		WillReturnRows(pgxmock.NewRows(tableCols))

	_, err = f.svc.Start(context.Background(), f.venueID, "other-venue", []domain.CartLine{{MenuItemID: uuid.New(), Quantity: 1}})
	require.ErrorIs(t, err, orders.ErrTableNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestResume(t *testing.T) {
	f := newFixture(t, nil)

	f.mock.ExpectQuery(`FROM checkouts WHERE venue_id = \$1 AND session_id = \$2`).
		WithArgs(f.venueID, "live").
		WillReturnRows(f.checkoutRow("live", nil, []byte(`[]`), domain.CheckoutPending, f.now.Add(time.Minute)))
	f.mock.ExpectQuery(`FROM checkouts WHERE venue_id = \$1 AND session_id = \$2`).
		WithArgs(f.venueID, "stale").
		WillReturnRows(f.checkoutRow("stale", nil, []byte(`[]`), domain.CheckoutPending, f.now))
	f.mock.ExpectQuery(`FROM checkouts WHERE venue_id = \$1 AND session_id = \$2`).
		WithArgs(f.venueID, "unknown").
		WillReturnRows(pgxmock.NewRows(checkoutCols))

	c, err := f.svc.Resume(context.Background(), f.venueID, "live")
	require.NoError(t, err)
	assert.Equal(t, "live", c.SessionID)

	_, err = f.svc.Resume(context.Background(), f.venueID, "stale")
	require.ErrorIs(t, err, ErrCheckoutExpired)

	_, err = f.svc.Resume(context.Background(), f.venueID, "unknown")
	require.ErrorIs(t, err, ErrCheckoutNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlace_CreatesAndLinksOrder(t *testing.T) {
	f := newFixture(t, nil)
	pasta := uuid.New()
	cart, _ := json.Marshal([]domain.CartLine{{MenuItemID: pasta, Quantity: 2}})

	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`FROM checkouts WHERE venue_id = \$1 AND session_id = \$2 FOR UPDATE`).
		WithArgs(f.venueID, "sid").
		WillReturnRows(f.checkoutRow("sid", nil, cart, domain.CheckoutPending, f.now.Add(time.Minute)))
	f.mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), f.venueID, f.tableID, "DRAFT").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(f.now, f.now))
	f.mock.ExpectQuery(`FROM menu_items WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(f.venueID, pasta).
		WillReturnRows(pgxmock.NewRows(menuItemCols).
			AddRow(pasta, f.venueID, uuid.New(), "Pasta", "", int64(1250), 0, []string{}, true, 0))
	f.mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(pgxmock.AnyArg(), f.venueID, pgxmock.AnyArg(), pasta, "Pasta", int64(1250), 0, 2, []string{}).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(f.now))
	f.mock.ExpectQuery(`FROM order_items WHERE venue_id = \$1 AND order_id = \$2`).
		WithArgs(f.venueID, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow(uuid.New(), uuid.New(), pasta, "Pasta", int64(1250), 0, 2, []string{}, f.now))
	f.mock.ExpectExec(`UPDATE orders SET total = \$3, tax_total = \$4, status = \$5`).
		WithArgs(f.venueID, pgxmock.AnyArg(), int64(2500), int64(0), "OPEN").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectExec(`UPDATE checkouts SET order_id = \$3, status = \$4 WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(f.venueID, pgxmock.AnyArg(), pgxmock.AnyArg(), "PROCESSING").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	out, err := f.svc.Place(context.Background(), f.venueID, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), out.Order.TotalCents)
	assert.Equal(t, domain.OrderOpen, out.Order.Status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlace_ExpiredCheckout(t *testing.T) {
	f := newFixture(t, nil)

	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(f.venueID, "sid").
		WillReturnRows(f.checkoutRow("sid", nil, []byte(`[]`), domain.CheckoutPending, f.now.Add(-time.Second)))
	f.mock.ExpectRollback()

	_, err := f.svc.Place(context.Background(), f.venueID, "sid")
	require.ErrorIs(t, err, ErrCheckoutExpired)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

// expectPlaced registers a Place call on a checkout that already has an
// order.
func (f *fixture) expectPlaced(orderID uuid.UUID, status domain.OrderStatus) {
	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(f.venueID, "sid").
		WillReturnRows(f.checkoutRow("sid", &orderID, []byte(`[]`), domain.CheckoutProcessing, f.now.Add(time.Minute)))
	f.mock.ExpectQuery(`FROM orders WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(f.venueID, orderID).
		WillReturnRows(pgxmock.NewRows(orderCols).
			AddRow(orderID, f.venueID, f.tableID, string(status), int64(2500), int64(0), int64(0), "", f.now, f.now))
	f.mock.ExpectQuery(`FROM order_items WHERE venue_id = \$1 AND order_id = \$2`).
		WithArgs(f.venueID, orderID).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow(uuid.New(), orderID, uuid.New(), "Pasta", int64(1250), 0, 2, []string{}, f.now))
	f.mock.ExpectCommit()

	f.mock.ExpectQuery(`FROM checkouts WHERE venue_id = \$1 AND session_id = \$2`).
		WithArgs(f.venueID, "sid").
		WillReturnRows(f.checkoutRow("sid", &orderID, []byte(`[]`), domain.CheckoutProcessing, f.now.Add(time.Minute)))
	f.mock.ExpectExec(`UPDATE checkouts SET tip_amount = \$3`).
		WithArgs(f.venueID, pgxmock.AnyArg(), int64(200)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func TestPay_DirectSettlesOrderAndCompletesCheckout(t *testing.T) {
	f := newFixture(t, nil)
	orderID := uuid.New()

	f.expectPlaced(orderID, domain.OrderOpen)

	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`FROM orders WHERE venue_id = \$1 AND id = \$2 FOR UPDATE`).
		WithArgs(f.venueID, orderID).
		WillReturnRows(pgxmock.NewRows(orderCols).
			AddRow(orderID, f.venueID, f.tableID, "OPEN", int64(2500), int64(0), int64(0), "", f.now, f.now))
	f.mock.ExpectQuery(`UPDATE venues SET invoice_seq = invoice_seq \+ 1`).
		WithArgs(f.venueID).
		WillReturnRows(pgxmock.NewRows([]string{"invoice_seq"}).AddRow(int64(9)))
	f.mock.ExpectExec(`UPDATE orders SET status = \$3, tip_amount = \$4`).
		WithArgs(f.venueID, orderID, "PAID", int64(200), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(pgxmock.AnyArg(), f.venueID, orderID, orders.ProviderDirect, pgxmock.AnyArg(), (*string)(nil), "SETTLED", int64(2700)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(f.now))
	f.mock.ExpectExec(`UPDATE checkouts SET status = \$3 WHERE venue_id = \$1 AND order_id = \$2`).
		WithArgs(f.venueID, orderID, "COMPLETED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.svc.Pay(context.Background(), f.venueID, "sid", PayInput{TipCents: 200})
	require.NoError(t, err)

	require.NotNil(t, res.Settlement)
	assert.Empty(t, res.RedirectURL)
	assert.Equal(t, domain.OrderPaid, res.Settlement.Order.Status)
	assert.Equal(t, int64(2700), res.Settlement.Payment.AmountCents)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_WithGatewayRedirects(t *testing.T) {
	gw := &fakeGateway{}
	f := newFixture(t, gw)
	orderID := uuid.New()

	f.expectPlaced(orderID, domain.OrderOpen)
	f.mock.ExpectQuery(`FROM venues WHERE id = \$1`).
		WithArgs(f.venueID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "slug", "currency", "theme_color", "logo_url", "invoice_seq", "created_at", "updated_at",
		}).AddRow(f.venueID, "Luigi's", "luigis", "EUR", "#000000", "", int64(0), f.now, f.now))

	res, err := f.svc.Pay(context.Background(), f.venueID, "sid", PayInput{TipCents: 200, IdempotencyKey: "k1"})
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/cs_1", res.RedirectURL)
	assert.Equal(t, int64(2500), gw.req.AmountCents)
	assert.Equal(t, int64(200), gw.req.TipCents)
	assert.Equal(t, "EUR", gw.req.Currency)
	assert.Equal(t, "k1", gw.req.IdempotencyKey)
	assert.Equal(t, "https://order.example.com/t/"+f.venueID.String()+"/checkout/sid?status=success", gw.req.SuccessURL)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_NegativeTip(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Pay(context.Background(), f.venueID, "sid", PayInput{TipCents: -5})
	require.ErrorIs(t, err, orders.ErrInvalidTip)
}

func (f *fixture) expectGetOrder(orderID uuid.UUID, status domain.OrderStatus, total int64) {
	f.mock.ExpectQuery(`FROM orders WHERE venue_id = \$1 AND id = \$2$`).
		WithArgs(f.venueID, orderID).
		WillReturnRows(pgxmock.NewRows(orderCols).AddRow(
			orderID, f.venueID, f.tableID, string(status), total, int64(0), int64(200), "2026-000001", f.now, f.now))
}

func (f *fixture) expectLockOrder(orderID uuid.UUID, total int64) {
	f.mock.ExpectQuery(`FROM orders WHERE venue_id = \$1 AND id = \$2 FOR UPDATE`).
		WithArgs(f.venueID, orderID).
		WillReturnRows(pgxmock.NewRows(orderCols).AddRow(
			orderID, f.venueID, f.tableID, string(domain.OrderOpen), total, int64(0), int64(0), "", f.now, f.now))
}

func TestHandleWebhook_SettlesOnceAcrossRedelivery(t *testing.T) {
	f := newFixture(t, nil)
	orderID := uuid.New()
	f.svc.gateway = &fakeGateway{event: &payment.Event{
		ID: "evt_1", VenueID: f.venueID, OrderID: orderID, AmountCents: 2700, TipCents: 200,
		Reference: "pi_1", Status: domain.PaymentSettled,
	}}

	// first delivery settles
	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(f.venueID, "evt_1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	f.expectLockOrder(orderID, 2500)
	f.mock.ExpectQuery(`UPDATE venues SET invoice_seq = invoice_seq \+ 1`).
		WithArgs(f.venueID).
		WillReturnRows(pgxmock.NewRows([]string{"invoice_seq"}).AddRow(int64(1)))
	f.mock.ExpectExec(`UPDATE orders SET status = \$3, tip_amount = \$4`).
		WithArgs(f.venueID, orderID, "PAID", int64(200), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(pgxmock.AnyArg(), f.venueID, orderID, "fake", "pi_1", pgxmock.AnyArg(), "SETTLED", int64(2700)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(f.now))
	f.mock.ExpectExec(`UPDATE checkouts SET status = \$3 WHERE venue_id = \$1 AND order_id = \$2`).
		WithArgs(f.venueID, orderID, "COMPLETED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	first, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, domain.OrderPaid, first.Order.Status)
	assert.Regexp(t, `^\d{4}-000001$`, first.Order.InvoiceNumber)
	require.NotNil(t, first.Payment)
	assert.Equal(t, int64(2700), first.Payment.AmountCents)

	// redelivery of the same event writes nothing
	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(f.venueID, "evt_1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	f.expectGetOrder(orderID, domain.OrderPaid, 2500)
	f.mock.ExpectCommit()

	second, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.Payment)
	assert.Equal(t, orderID, second.Order.ID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandleWebhook_UnderpaidDoesNotSettle(t *testing.T) {
	f := newFixture(t, nil)
	orderID := uuid.New()
	f.svc.gateway = &fakeGateway{event: &payment.Event{
		ID: "evt_5", VenueID: f.venueID, OrderID: orderID, AmountCents: 2500,
		Reference: "pi_5", Status: domain.PaymentSettled,
	}}

	f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(f.venueID, "evt_5").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	f.expectLockOrder(orderID, 5000)
	f.mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(pgxmock.AnyArg(), f.venueID, orderID, "fake", "pi_5", pgxmock.AnyArg(), "FAILED", int64(2500)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(f.now))
	f.mock.ExpectExec(`UPDATE checkouts SET status = \$4 WHERE venue_id = \$1 AND order_id = \$2 AND status <> \$3`).
		WithArgs(f.venueID, orderID, "COMPLETED", "FAILED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	res, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.True(t, res.Underpaid)
	assert.Equal(t, domain.OrderOpen, res.Order.Status)
	assert.Equal(t, domain.PaymentFailed, res.Payment.Status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandleWebhook(t *testing.T) {
	t.Run("no gateway", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.HandleWebhook(context.Background(), nil, "")
		require.ErrorIs(t, err, ErrNoGateway)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newFixture(t, &fakeGateway{err: payment.ErrSignature})
		_, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=bad")
		require.ErrorIs(t, err, payment.ErrSignature)
	})

	t.Run("ignored event type", func(t *testing.T) {
		f := newFixture(t, &fakeGateway{err: payment.ErrIgnoredEvent})
		res, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("redelivered settlement", func(t *testing.T) {
		f := newFixture(t, nil)
		orderID := uuid.New()
		f.svc.gateway = &fakeGateway{event: &payment.Event{
			ID: "evt_1", VenueID: f.venueID, OrderID: orderID, AmountCents: 2700, TipCents: 200,
			Reference: "pi_1", Status: domain.PaymentSettled,
		}}

		f.mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
		f.mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(f.venueID, "evt_1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		f.expectGetOrder(orderID, domain.OrderPaid, 2500)
		f.mock.ExpectCommit()

		res, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		require.NoError(t, err)
		assert.True(t, res.Duplicate)
		assert.Equal(t, orderID, res.Order.ID)
		require.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("failed payment", func(t *testing.T) {
		f := newFixture(t, nil)
		orderID := uuid.New()
		f.svc.gateway = &fakeGateway{event: &payment.Event{
			ID: "evt_2", VenueID: f.venueID, OrderID: orderID, Status: domain.PaymentFailed,
		}}

		f.mock.ExpectExec(`UPDATE checkouts SET status = \$4 WHERE venue_id = \$1 AND order_id = \$2 AND status <> \$3`).
			WithArgs(f.venueID, orderID, "COMPLETED", "FAILED").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		res, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		require.NoError(t, err)
		assert.Nil(t, res)
		require.NoError(t, f.mock.ExpectationsWereMet())
	})
}
