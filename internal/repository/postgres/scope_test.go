package postgresrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{"id", "venue_id", "table_id", "status", "total", "tax_total", "tip_amount", "invoice_number", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestClause(t *testing.T) {
	v := uuid.New()
	id := uuid.New()

	w := tenantWhere(v).and("id = ?", id).and("status = ?", "OPEN")
	assert.Equal(t, "WHERE venue_id = $1 AND id = $2 AND status = $3", w.String())
	assert.Equal(t, []any{v, id, "OPEN"}, w.Args())

	assert.Equal(t, "$4", w.arg(10))
	assert.Equal(t, "WHERE v.venue_id = $1", tenantWhereCol("v.venue_id", v).String())
}

func TestOrders_ListAndCountAreScopedToVenue(t *testing.T) {
	mock := newMock(t)
	v := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM orders WHERE venue_id = \$1 AND status = \$2 ORDER BY created_at DESC, id LIMIT \$3 OFFSET \$4`).
		WithArgs(v, "OPEN", 10, 20).
		WillReturnRows(pgxmock.NewRows(orderCols).
			AddRow(uuid.New(), v, uuid.New(), "OPEN", int64(1200), int64(0), int64(0), "", now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE venue_id = \$1 AND status = \$2`).
		WithArgs(v, "OPEN").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(21)))

	repo := NewStore(mock).Scope(v).Orders()
	f := domain.OrderFilter{Status: domain.OrderOpen}

	list, err := repo.List(context.Background(), f, 10, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, v, list[0].VenueID)

	n, err := repo.Count(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(21), n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrders_GetOfOtherVenueIsNotFound(t *testing.T) {
	mock := newMock(t)
	v := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`FROM orders WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(v, id).
		WillReturnRows(pgxmock.NewRows(orderCols))

	_, err := NewStore(mock).Scope(v).Orders().Get(context.Background(), id)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrders_SetValuesFollowWhereArgs(t *testing.T) {
	mock := newMock(t)
	v := uuid.New()
	id := uuid.New()

	mock.ExpectExec(`UPDATE orders SET total = \$3, tax_total = \$4, status = \$5, updated_at = now\(\) WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(v, id, int64(2800), int64(447), "OPEN").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewStore(mock).Scope(v).Orders().UpdateTotals(context.Background(), id, 2800, 447, domain.OrderOpen)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_TagsScopeVenue(t *testing.T) {
	mock := newMock(t)
	v := uuid.New()
	orderID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO payments`).
		WithArgs(pgxmock.AnyArg(), v, orderID, "manual", "2026-000001", (*string)(nil), "SETTLED", int64(900)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	p := &domain.Payment{
		VenueID:     uuid.New(), // ignored
		OrderID:     orderID,
		Provider:    "manual",
		Reference:   "2026-000001",
		Status:      domain.PaymentSettled,
		AmountCents: 900,
	}
	require.NoError(t, NewStore(mock).Scope(v).Payments().Create(context.Background(), p))
	assert.Equal(t, v, p.VenueID)
	assert.NotEqual(t, uuid.Nil, p.ID)

	mock.ExpectQuery(`INSERT INTO areas`).
		WithArgs(pgxmock.AnyArg(), v, "Terrace").
		WillReturnRows(pgxmock.NewRows([]string{"position"}).AddRow(2))

	a, err := NewStore(mock).Scope(v).Areas().Create(context.Background(), "Terrace")
	require.NoError(t, err)
	assert.Equal(t, v, a.VenueID)
	assert.Equal(t, 2, a.Position)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTableLookupByToken(t *testing.T) {
	mock := newMock(t)
	v1, v2 := uuid.New(), uuid.New()
	tableID := uuid.New()
	now := time.Now()
	cols := []string{"id", "venue_id", "area_id", "name", "qr_token", "created_at"}

	mock.ExpectQuery(`FROM tables WHERE qr_token = \$1`).
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(tableID, v2, nil, "Bar 1", "tok", now))
	mock.ExpectQuery(`FROM tables WHERE venue_id = \$1 AND qr_token = \$2`).
		WithArgs(v1, "tok").
		WillReturnRows(pgxmock.NewRows(cols))

	store := NewStore(mock)

	tbl, err := store.Directory().TableByToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, v2, tbl.VenueID)
	assert.Nil(t, tbl.AreaID)

	_, err = store.Scope(v1).Tables().GetByToken(context.Background(), "tok")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateDBErr(t *testing.T) {
	assert.Nil(t, translateDBErr(nil))
	assert.ErrorIs(t, translateDBErr(&pgconn.PgError{Code: "23505"}), repository.ErrConflict)
	assert.ErrorIs(t, translateDBErr(&pgconn.PgError{Code: "23503"}), repository.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, translateDBErr(other))

	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
}
