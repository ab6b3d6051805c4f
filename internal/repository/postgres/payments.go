package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
)

type PaymentRepo struct {
	scoped
}

func (r *PaymentRepo) With(db DB) *PaymentRepo {
	cp := *r
	cp.db = db
	return &cp
}

// Create inserts p under the scope venue.
//
// Returns:
//   - error: repository.ErrConflict if the provider event id was already recorded.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.PaymentRepo.Create"

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.VenueID = r.venueID

	var eventID *string
	if p.ProviderEventID != "" {
		eventID = &p.ProviderEventID
	}

	err := r.handle().QueryRow(ctx, `
		INSERT INTO payments (id, venue_id, order_id, provider, reference, provider_event_id, status, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, p.ID, p.VenueID, p.OrderID, p.Provider, p.Reference, eventID,
		string(p.Status), p.AmountCents).Scan(&p.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// EventProcessed reports whether a payment with the provider event id exists.
func (r *PaymentRepo) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	const op = "postgres.PaymentRepo.EventProcessed"

	w := r.where().and("provider_event_id = ?", eventID)
	var exists bool
	if err := r.handle().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments `+w.String()+`)`, w.Args()...,
	).Scan(&exists); err != nil {
		return false, wrapDBErr(op, err)
	}

	return exists, nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	const op = "postgres.PaymentRepo.ListByOrder"

	w := r.where().and("order_id = ?", orderID)
	rows, err := r.handle().Query(ctx, `
		SELECT id, venue_id, order_id, provider, reference, COALESCE(provider_event_id, ''), status, amount, created_at
		FROM payments `+w.String()+`
		ORDER BY created_at
	`, w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var (
			p      domain.Payment
			status string
		)
		if err := rows.Scan(
			&p.ID, &p.VenueID, &p.OrderID, &p.Provider, &p.Reference,
			&p.ProviderEventID, &status, &p.AmountCents, &p.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		p.Status = domain.PaymentStatus(status)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
