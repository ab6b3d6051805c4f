package postgresrepo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/tableorder/internal/domain"
)

// UserRepo is global: users are not owned by a venue, they are bound to
// venues through user_venue_roles.
type UserRepo struct {
	pool DB
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const userColumns = `id, email, name, password_hash, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u with a lower-cased email.
//
// Returns:
//   - error: repository.ErrConflict if the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.UserRepo.Create"

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	err := r.handle().QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, u.ID, u.Email, u.Name, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.UserRepo.Get"

	u, err := scanUser(r.handle().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	u, err := scanUser(r.handle().QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "postgres.UserRepo.UpdatePassword"

	tag, err := r.handle().Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, pgx.ErrNoRows)
	}

	return nil
}

func (r *UserRepo) AddRole(ctx context.Context, userID, venueID uuid.UUID, role domain.Role) error {
	const op = "postgres.UserRepo.AddRole"

	_, err := r.handle().Exec(ctx, `
		INSERT INTO user_venue_roles (user_id, venue_id, role)
		VALUES ($1, $2, $3)
	`, userID, venueID, string(role))
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Roles lists every venue the user holds a role in, oldest binding first.
func (r *UserRepo) Roles(ctx context.Context, userID uuid.UUID) ([]domain.VenueRole, error) {
	const op = "postgres.UserRepo.Roles"

	rows, err := r.handle().Query(ctx, `
		SELECT uvr.user_id, uvr.venue_id, v.name, uvr.role
		FROM user_venue_roles uvr
		JOIN venues v ON v.id = uvr.venue_id
		WHERE uvr.user_id = $1
		ORDER BY uvr.created_at, v.name
	`, userID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.VenueRole
	for rows.Next() {
		var (
			vr   domain.VenueRole
			role string
		)
		if err := rows.Scan(&vr.UserID, &vr.VenueID, &vr.VenueName, &role); err != nil {
			return nil, wrapDBErr(op, err)
		}
		vr.Role = domain.Role(role)
		out = append(out, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Role returns the user's role in one venue.
//
// Returns:
//   - error: repository.ErrNotFound if the user holds no role there.
func (r *UserRepo) Role(ctx context.Context, userID, venueID uuid.UUID) (domain.Role, error) {
	const op = "postgres.UserRepo.Role"

	var role string
	err := r.handle().QueryRow(ctx, `
		SELECT role FROM user_venue_roles WHERE user_id = $1 AND venue_id = $2
	`, userID, venueID).Scan(&role)
	if err != nil {
		return "", wrapDBErr(op, err)
	}

	return domain.Role(role), nil
}
