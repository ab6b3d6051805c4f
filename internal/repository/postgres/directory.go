package postgresrepo

import (
	"context"

	"github.com/kirinyoku/tableorder/internal/domain"
)

// DirectoryRepo answers the few lookups that must run before a venue is
// known. Its only entry point is the QR token, which is unique system-wide.
type DirectoryRepo struct {
	pool DB
}

// TableByToken resolves a QR token to its table across all venues.
func (r *DirectoryRepo) TableByToken(ctx context.Context, token string) (*domain.Table, error) {
	const op = "postgres.DirectoryRepo.TableByToken"

	t, err := scanTable(r.pool.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE qr_token = $1`, token))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}
