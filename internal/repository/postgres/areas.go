package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

type AreaRepo struct {
	scoped
}

func (r *AreaRepo) With(db DB) *AreaRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AreaRepo) List(ctx context.Context) ([]domain.Area, error) {
	const op = "postgres.AreaRepo.List"

	w := r.where()
	rows, err := r.handle().Query(ctx, `
		SELECT id, venue_id, name, position FROM areas
		`+w.String()+`
		ORDER BY position, name
	`, w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Area
	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.ID, &a.VenueID, &a.Name, &a.Position); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *AreaRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Area, error) {
	const op = "postgres.AreaRepo.Get"

	w := r.where().and("id = ?", id)
	var a domain.Area
	err := r.handle().QueryRow(ctx,
		`SELECT id, venue_id, name, position FROM areas `+w.String(), w.Args()...,
	).Scan(&a.ID, &a.VenueID, &a.Name, &a.Position)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

// Create appends a new area after the last one of the venue.
func (r *AreaRepo) Create(ctx context.Context, name string) (*domain.Area, error) {
	const op = "postgres.AreaRepo.Create"

	a := domain.Area{ID: uuid.New(), VenueID: r.venueID, Name: name}
	err := r.handle().QueryRow(ctx, `
		INSERT INTO areas (id, venue_id, name, position)
		SELECT $1, $2, $3, COALESCE(MAX(position) + 1, 0) FROM areas WHERE venue_id = $2
		RETURNING position
	`, a.ID, a.VenueID, a.Name).Scan(&a.Position)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

// Delete removes an area. Tables in it keep existing without an area.
func (r *AreaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.AreaRepo.Delete"

	w := r.where().and("id = ?", id)
	return r.execOne(ctx, op, `DELETE FROM areas `+w.String(), w.Args())
}
