// Package uow runs a unit of work in one database transaction and defers
// side effects, such as order events and cache invalidation, until the
// transaction has committed.
package uow

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
)

// AfterCommit runs once the transaction that registered it has committed.
// It cannot fail the unit of work; it reports its own errors.
type AfterCommit func(ctx context.Context)

// Work is the transactional body. Every repository call inside it must go
// through tx. after registers a hook for the current attempt.
type Work func(ctx context.Context, tx postgresrepo.DB, after func(AfterCommit)) error

type UoW struct {
	store  *postgresrepo.Store
	logger *slog.Logger
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store, logger: slog.Default()}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(ctx context.Context, fn Work) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts is Do with explicit transaction options. Hooks registered by an
// attempt that was rolled back and retried are discarded.
//
// Hooks get a context detached from ctx's cancellation: once the data is
// committed its events go out even if the client has gone away.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn Work) error {
	var hooks []AfterCommit

	err := u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgresrepo.DB) error {
		hooks = hooks[:0]
		return fn(ctx, tx, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	hookCtx := context.WithoutCancel(ctx)
	for _, h := range hooks {
		u.run(hookCtx, h)
	}

	return nil
}

func (u *UoW) run(ctx context.Context, h AfterCommit) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("after-commit hook panicked", "panic", r)
		}
	}()
	h(ctx)
}
