package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

type TableRepo struct {
	scoped
}

func (r *TableRepo) With(db DB) *TableRepo {
	cp := *r
	cp.db = db
	return &cp
}

const tableColumns = `id, venue_id, area_id, name, qr_token, created_at`

func scanTable(row interface{ Scan(dest ...any) error }) (*domain.Table, error) {
	var t domain.Table
	if err := row.Scan(&t.ID, &t.VenueID, &t.AreaID, &t.Name, &t.QRToken, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the venue tables, optionally narrowed to one area.
func (r *TableRepo) List(ctx context.Context, areaID *uuid.UUID) ([]domain.Table, error) {
	const op = "postgres.TableRepo.List"

	w := r.where()
	if areaID != nil {
		w.and("area_id = ?", *areaID)
	}

	rows, err := r.handle().Query(ctx,
		`SELECT `+tableColumns+` FROM tables `+w.String()+` ORDER BY name`,
		w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Table, error) {
	const op = "postgres.TableRepo.Get"

	w := r.where().and("id = ?", id)
	t, err := scanTable(r.handle().QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables `+w.String(), w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// GetByToken finds a table by QR token inside the venue. A token that
// belongs to another venue is reported as repository.ErrNotFound.
func (r *TableRepo) GetByToken(ctx context.Context, token string) (*domain.Table, error) {
	const op = "postgres.TableRepo.GetByToken"

	w := r.where().and("qr_token = ?", token)
	t, err := scanTable(r.handle().QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables `+w.String(), w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// TableInput is the payload for a new table. The venue always comes from
// the scope.
type TableInput struct {
	AreaID  *uuid.UUID
	Name    string
	QRToken string
}

// Create inserts a table.
//
// Returns:
//   - error: repository.ErrConflict if the token collides or the area
//     does not belong to the venue.
func (r *TableRepo) Create(ctx context.Context, in TableInput) (*domain.Table, error) {
	const op = "postgres.TableRepo.Create"

	t := domain.Table{
		ID:      uuid.New(),
		VenueID: r.venueID,
		AreaID:  in.AreaID,
		Name:    in.Name,
		QRToken: in.QRToken,
	}

	err := r.handle().QueryRow(ctx, `
		INSERT INTO tables (id, venue_id, area_id, name, qr_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.VenueID, t.AreaID, t.Name, t.QRToken).Scan(&t.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// UpdateToken overwrites the QR token, invalidating the previous one.
func (r *TableRepo) UpdateToken(ctx context.Context, id uuid.UUID, token string) (*domain.Table, error) {
	const op = "postgres.TableRepo.UpdateToken"

	w := r.where().and("id = ?", id)
	set := w.arg(token)
	t, err := scanTable(r.handle().QueryRow(ctx,
		`UPDATE tables SET qr_token = `+set+` `+w.String()+` RETURNING `+tableColumns,
		w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

func (r *TableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.TableRepo.Delete"

	w := r.where().and("id = ?", id)
	return r.execOne(ctx, op, `DELETE FROM tables `+w.String(), w.Args())
}
