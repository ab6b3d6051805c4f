package postgresrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type scoped struct {
	venueID uuid.UUID
	pool    DB
	db      DB
}

func (s scoped) handle() DB {
	if s.db != nil {
		return s.db
	}
	return s.pool
}

func (s scoped) where() *clause {
	return tenantWhere(s.venueID)
}

// execOne runs a point write and reports a missing row as not found.
func (s scoped) execOne(ctx context.Context, op, q string, args []any) error {
	tag, err := s.handle().Exec(ctx, q, args...)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, pgx.ErrNoRows)
	}
	return nil
}

// Scope holds no state besides the venue id and is cheap to build per request.
type Scope struct {
	scoped
}

func (s *Scope) VenueID() uuid.UUID { return s.venueID }

// With binds the scope to a transaction.
func (s *Scope) With(db DB) *Scope {
	cp := *s
	cp.db = db
	return &cp
}

func (s *Scope) Areas() *AreaRepo         { return &AreaRepo{scoped: s.scoped} }
func (s *Scope) Tables() *TableRepo       { return &TableRepo{scoped: s.scoped} }
func (s *Scope) Menu() *MenuRepo          { return &MenuRepo{scoped: s.scoped} }
func (s *Scope) Orders() *OrderRepo       { return &OrderRepo{scoped: s.scoped} }
func (s *Scope) Checkouts() *CheckoutRepo { return &CheckoutRepo{scoped: s.scoped} }
func (s *Scope) Payments() *PaymentRepo   { return &PaymentRepo{scoped: s.scoped} }
