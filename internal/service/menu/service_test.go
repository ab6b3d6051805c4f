package menu

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tableorder/internal/repository/redis"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	categoryCols = []string{"id", "venue_id", "name", "position"}
	itemCols     = []string{"id", "venue_id", "category_id", "name", "description", "price", "tax_rate", "allergens", "available", "position"}
)

func setup(t *testing.T) (pgxmock.PgxPoolIface, *miniredis.Miniredis, *Service) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(postgresrepo.NewStore(mock), redisrepo.NewCache(rdb), logger, Config{})

	return mock, mr, svc
}

func TestPublicMenu_GroupsAndCaches(t *testing.T) {
	mock, mr, svc := setup(t)
	v := uuid.New()
	mains, drinks, empty := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM menu_categories WHERE venue_id = \$1 ORDER BY position, name`).
		WithArgs(v).
		WillReturnRows(pgxmock.NewRows(categoryCols).
			AddRow(mains, v, "Mains", 0).
			AddRow(empty, v, "Desserts", 1).
			AddRow(drinks, v, "Drinks", 2))
	mock.ExpectQuery(`FROM menu_items WHERE venue_id = \$1 AND available = \$2`).
		WithArgs(v, true).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow(uuid.New(), v, mains, "Burger", "", int64(1250), 700, []string{"gluten"}, true, 0).
			AddRow(uuid.New(), v, drinks, "Lemonade", "", int64(400), 1900, []string{}, true, 0).
			AddRow(uuid.New(), v, mains, "Pasta", "", int64(1100), 700, []string{}, true, 1))

	first, err := svc.PublicMenu(context.Background(), v)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Mains", first[0].Category.Name)
	assert.Len(t, first[0].Items, 2)
	assert.Equal(t, "Drinks", first[1].Category.Name)
	assert.True(t, mr.Exists(redisrepo.KeyMenu(v)))

	// served from cache, no further queries expected
	second, err := svc.PublicMenu(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_UpsertsCategoryAndInvalidates(t *testing.T) {
	mock, mr, svc := setup(t)
	v := uuid.New()
	catID := uuid.New()

	require.NoError(t, mr.Set(redisrepo.KeyMenu(v), "[]"))

	mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	mock.ExpectQuery(`INSERT INTO menu_categories .* ON CONFLICT \(venue_id, name\)`).
		WithArgs(pgxmock.AnyArg(), v, "Mains").
		WillReturnRows(pgxmock.NewRows(categoryCols).AddRow(catID, v, "Mains", 0))
	mock.ExpectQuery(`INSERT INTO menu_items`).
		WithArgs(pgxmock.AnyArg(), v, catID, "Burger", "beef", int64(1250), 700, []string{}, true).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow(uuid.New(), v, catID, "Burger", "beef", int64(1250), 700, []string{}, true, 0))
	mock.ExpectCommit()

	item, err := svc.CreateItem(context.Background(), v, ItemInput{
		Category:    " Mains ",
		Name:        "Burger",
		Description: "beef",
		PriceCents:  1250,
		TaxRateBP:   700,
	})
	require.NoError(t, err)
	assert.Equal(t, catID, item.CategoryID)
	assert.True(t, item.Available)
	assert.False(t, mr.Exists(redisrepo.KeyMenu(v)))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_Validation(t *testing.T) {
	mock, _, svc := setup(t)
	v := uuid.New()

	tests := []struct {
		name string
		in   ItemInput
		want error
	}{
		{"no name", ItemInput{Category: "Mains"}, ErrInvalidName},
		{"no category", ItemInput{Name: "Soup"}, ErrCategoryNotFound},
		{"negative price", ItemInput{Category: "Mains", Name: "Soup", PriceCents: -1}, ErrInvalidPrice},
		{"tax too high", ItemInput{Category: "Mains", Name: "Soup", TaxRateBP: 10001}, ErrInvalidTaxRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(context.Background(), v, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_StillReferenced(t *testing.T) {
	mock, mr, svc := setup(t)
	v := uuid.New()
	id := uuid.New()

	require.NoError(t, mr.Set(redisrepo.KeyMenu(v), "[]"))

	mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	mock.ExpectExec(`DELETE FROM menu_categories WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(v, id).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "menu_items_category_fk"})
	mock.ExpectRollback()

	err := svc.DeleteCategory(context.Background(), v, id)
	require.ErrorIs(t, err, ErrCategoryNotEmpty)

	// nothing committed, cache untouched
	assert.True(t, mr.Exists(redisrepo.KeyMenu(v)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAvailability_UnknownItem(t *testing.T) {
	mock, _, svc := setup(t)
	v := uuid.New()
	id := uuid.New()

	mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	mock.ExpectQuery(`UPDATE menu_items SET available = \$3 WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(v, id, false).
		WillReturnRows(pgxmock.NewRows(itemCols))
	mock.ExpectRollback()

	_, err := svc.SetAvailability(context.Background(), v, id, false)
	require.ErrorIs(t, err, ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
