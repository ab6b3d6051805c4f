package tables

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/tableorder/internal/qr"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableCols = []string{"id", "venue_id", "area_id", "name", "qr_token", "created_at"}

func setup(t *testing.T, tokens ...string) (pgxmock.PgxPoolIface, *Service) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := New(postgresrepo.NewStore(mock), qr.NewGenerator("https://order.example.com/"))
	if len(tokens) > 0 {
		next := 0
		svc.newToken = func() (string, error) {
			tok := tokens[next%len(tokens)]
			next++
			return tok, nil
		}
	}

	return mock, svc
}

func TestCreateTable_RetriesTokenCollision(t *testing.T) {
	mock, svc := setup(t, "dup", "fresh")
	v := uuid.New()

	mock.ExpectQuery(`INSERT INTO tables`).
		WithArgs(pgxmock.AnyArg(), v, (*uuid.UUID)(nil), "Table 1", "dup").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tables_qr_token_key"})
	mock.ExpectQuery(`INSERT INTO tables`).
		WithArgs(pgxmock.AnyArg(), v, (*uuid.UUID)(nil), "Table 1", "fresh").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	tbl, err := svc.CreateTable(context.Background(), v, nil, " Table 1 ")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tbl.QRToken)
	assert.Equal(t, v, tbl.VenueID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTable_ForeignArea(t *testing.T) {
	mock, svc := setup(t)
	v := uuid.New()
	area := uuid.New()

	mock.ExpectQuery(`FROM areas WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(v, area).
		WillReturnRows(pgxmock.NewRows([]string{"id", "venue_id", "name", "position"}))

	_, err := svc.CreateTable(context.Background(), v, &area, "Patio 2")
	require.ErrorIs(t, err, ErrAreaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateToken(t *testing.T) {
	mock, svc := setup(t, "rotated")
	v := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`UPDATE tables SET qr_token = \$3 WHERE venue_id = \$1 AND id = \$2 RETURNING`).
		WithArgs(v, id, "rotated").
		WillReturnRows(pgxmock.NewRows(tableCols).AddRow(id, v, nil, "Bar 3", "rotated", time.Now()))

	tbl, err := svc.RotateToken(context.Background(), v, id)
	require.NoError(t, err)
	assert.Equal(t, "rotated", tbl.QRToken)

	mock.ExpectQuery(`UPDATE tables SET qr_token = \$3`).
		WithArgs(v, id, "rotated").
		WillReturnRows(pgxmock.NewRows(tableCols))

	_, err = svc.RotateToken(context.Background(), v, id)
	require.ErrorIs(t, err, ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQRCode(t *testing.T) {
	mock, svc := setup(t)
	v := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`FROM tables WHERE venue_id = \$1 AND id = \$2`).
		WithArgs(v, id).
		WillReturnRows(pgxmock.NewRows(tableCols).AddRow(id, v, nil, "Bar 3", "abc", time.Now()))

	png, url, err := svc.QRCode(context.Background(), v, id)
	require.NoError(t, err)
	assert.Equal(t, "https://order.example.com/t/"+v.String()+"/table/abc", url)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve(t *testing.T) {
	mock, svc := setup(t)
	v := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`FROM tables WHERE qr_token = \$1`).
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows(tableCols).AddRow(id, v, nil, "Bar 3", "abc", time.Now()))
	mock.ExpectQuery(`FROM tables WHERE qr_token = \$1`).
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows(tableCols))

	res, err := svc.Resolve(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, Resolution{VenueID: v, TableID: id, TableName: "Bar 3"}, *res)

	_, err = svc.Resolve(context.Background(), "gone")
	require.ErrorIs(t, err, ErrTableNotFound)

	_, err = svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
