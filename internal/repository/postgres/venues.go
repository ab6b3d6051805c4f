package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
)

// VenueRepo works on the tenant root table. It is not venue scoped because
// the venue row is the scope.
type VenueRepo struct {
	pool DB
	db   DB
}

func (r *VenueRepo) With(db DB) *VenueRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *VenueRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// VenueUpdate carries optional venue settings. Nil fields are left unchanged.
type VenueUpdate struct {
	Name       *string
	Currency   *string
	ThemeColor *string
	LogoURL    *string
}

const venueColumns = `id, name, slug, currency, theme_color, logo_url, invoice_seq, created_at, updated_at`

func scanVenue(row interface{ Scan(dest ...any) error }) (*domain.Venue, error) {
	var v domain.Venue
	if err := row.Scan(
		&v.ID, &v.Name, &v.Slug, &v.Currency, &v.ThemeColor, &v.LogoURL,
		&v.InvoiceSeq, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts v. ID is generated when empty.
//
// Returns:
//   - error: repository.ErrConflict if the slug is taken.
func (r *VenueRepo) Create(ctx context.Context, v *domain.Venue) error {
	const op = "postgres.VenueRepo.Create"

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	err := r.handle().QueryRow(ctx, `
		INSERT INTO venues (id, name, slug, currency, theme_color, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, v.ID, v.Name, v.Slug, v.Currency, v.ThemeColor, v.LogoURL).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *VenueRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Venue, error) {
	const op = "postgres.VenueRepo.Get"

	v, err := scanVenue(r.handle().QueryRow(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return v, nil
}

func (r *VenueRepo) Update(ctx context.Context, id uuid.UUID, u VenueUpdate) (*domain.Venue, error) {
	const op = "postgres.VenueRepo.Update"

	v, err := scanVenue(r.handle().QueryRow(ctx, `
		UPDATE venues SET
			name        = COALESCE($2, name),
			currency    = COALESCE($3, currency),
			theme_color = COALESCE($4, theme_color),
			logo_url    = COALESCE($5, logo_url),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+venueColumns,
		id, u.Name, u.Currency, u.ThemeColor, u.LogoURL))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return v, nil
}

// NextInvoiceSeq atomically increments the venue invoice counter and returns
// the new value. Concurrent callers block on the venue row, so no two
// settlements of one venue can receive the same number.
func (r *VenueRepo) NextInvoiceSeq(ctx context.Context, id uuid.UUID) (int64, error) {
	const op = "postgres.VenueRepo.NextInvoiceSeq"

	var seq int64
	err := r.handle().QueryRow(ctx, `
		UPDATE venues SET invoice_seq = invoice_seq + 1, updated_at = now()
		WHERE id = $1
		RETURNING invoice_seq
	`, id).Scan(&seq)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	if seq <= 0 {
		return 0, fmt.Errorf("%s: %w", op, repository.ErrConflict)
	}

	return seq, nil
}
