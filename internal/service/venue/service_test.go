package venue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUpdate_Validation(t *testing.T) {
	svc := New(nil)
	id := uuid.New()

	tests := []struct {
		name string
		st   Settings
		want error
	}{
		{"blank name", Settings{Name: ptr("  ")}, ErrInvalidName},
		{"currency too long", Settings{Currency: ptr("EURO")}, ErrInvalidCurrency},
		{"currency digits", Settings{Currency: ptr("E1R")}, ErrInvalidCurrency},
		{"short color", Settings{ThemeColor: ptr("#fff")}, ErrInvalidColor},
		{"relative logo", Settings{LogoURL: ptr("/logo.png")}, ErrInvalidLogoURL},
		{"ftp logo", Settings{LogoURL: ptr("ftp://cdn.example.com/logo.png")}, ErrInvalidLogoURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), id, tt.st)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdate_NormalizesAndStores(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`UPDATE venues SET`).
		WithArgs(id, (*string)(nil), ptr("EUR"), ptr("#112233"), ptr("")).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "slug", "currency", "theme_color", "logo_url", "invoice_seq", "created_at", "updated_at",
		}).AddRow(id, "Luigi's", "luigis", "EUR", "#112233", "", int64(12), now, now))

	svc := New(postgresrepo.NewStore(mock))
	v, err := svc.Update(context.Background(), id, Settings{
		Currency:   ptr(" eur "),
		ThemeColor: ptr("#112233"),
		LogoURL:    ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", v.Currency)
	assert.Equal(t, int64(12), v.InvoiceSeq)
	require.NoError(t, mock.ExpectationsWereMet())
}
