package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/tableorder/internal/domain"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	userCols = []string{"id", "email", "name", "password_hash", "created_at"}
	roleCols = []string{"user_id", "venue_id", "name", "role"}
)

func setup(t *testing.T) (pgxmock.PgxPoolIface, *Service) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, New(postgresrepo.NewStore(mock), Config{BcryptCost: bcrypt.MinCost})
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func TestSignup_CreatesOwnerOfNewVenue(t *testing.T) {
	mock, svc := setup(t)
	now := time.Now()

	mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "ana@example.com", "Ana", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(`INSERT INTO venues`).
		WithArgs(pgxmock.AnyArg(), "Luigi's Trattoria", pgxmock.AnyArg(), "EUR", defaultColor, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO user_venue_roles`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "OWNER").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	sess, err := svc.Signup(context.Background(), SignupInput{
		Email:     " Ana@Example.com ",
		Password:  "correct horse",
		Name:      "Ana",
		VenueName: "Luigi's Trattoria",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleOwner, sess.User.Role)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.NotEqual(t, uuid.Nil, sess.VenueID)
	assert.Equal(t, sess.VenueID, sess.User.VenueID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_EmailTaken(t *testing.T) {
	mock, svc := setup(t)

	mock.ExpectBeginTx(postgresrepo.DefaultTxOptions)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "ana@example.com", "Ana", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	_, err := svc.Signup(context.Background(), SignupInput{
		Email: "ana@example.com", Password: "correct horse", Name: "Ana", VenueName: "Luigi's",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_Validation(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Signup(context.Background(), SignupInput{Email: "nope", Password: "long enough", Name: "A", VenueName: "V"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Signup(context.Background(), SignupInput{Email: "a@b.c", Password: "short", Name: "A", VenueName: "V"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Signup(context.Background(), SignupInput{Email: "a@b.c", Password: "long enough", Name: "A"})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLogin(t *testing.T) {
	userID := uuid.New()
	v1, v2 := uuid.New(), uuid.New()
	pw := hash(t, "correct horse")

	expectUser := func(mock pgxmock.PgxPoolIface) {
		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("ana@example.com").
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "ana@example.com", "Ana", pw, time.Now()))
	}
	expectRoles := func(mock pgxmock.PgxPoolIface) {
		mock.ExpectQuery(`FROM user_venue_roles uvr`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(roleCols).
				AddRow(userID, v1, "First", "OWNER").
				AddRow(userID, v2, "Second", "STAFF"))
	}

	t.Run("first venue by default", func(t *testing.T) {
		mock, svc := setup(t)
		expectUser(mock)
		expectRoles(mock)

		sess, err := svc.Login(context.Background(), "ana@example.com", "correct horse", uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, v1, sess.VenueID)
		assert.Equal(t, domain.RoleOwner, sess.User.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requested venue", func(t *testing.T) {
		mock, svc := setup(t)
		expectUser(mock)
		expectRoles(mock)

		sess, err := svc.Login(context.Background(), "ana@example.com", "correct horse", v2)
		require.NoError(t, err)
		assert.Equal(t, v2, sess.VenueID)
		assert.Equal(t, domain.RoleStaff, sess.User.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("venue without role", func(t *testing.T) {
		mock, svc := setup(t)
		expectUser(mock)
		expectRoles(mock)

		_, err := svc.Login(context.Background(), "ana@example.com", "correct horse", uuid.New())
		require.ErrorIs(t, err, ErrNoVenueAccess)
	})

	t.Run("wrong password", func(t *testing.T) {
		mock, svc := setup(t)
		expectUser(mock)

		_, err := svc.Login(context.Background(), "ana@example.com", "wrong horse", uuid.Nil)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email", func(t *testing.T) {
		mock, svc := setup(t)
		mock.ExpectQuery(`FROM users WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(userCols))

		_, err := svc.Login(context.Background(), "ghost@example.com", "whatever1", uuid.Nil)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChangePassword(t *testing.T) {
	mock, svc := setup(t)
	userID := uuid.New()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "ana@example.com", "Ana", hash(t, "old password"), time.Now()))
	mock.ExpectExec(`UPDATE users SET password_hash = \$2 WHERE id = \$1`).
		WithArgs(userID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, svc.ChangePassword(context.Background(), userID, "old password", "new password"))

	err := svc.ChangePassword(context.Background(), userID, "old password", "short")
	require.ErrorIs(t, err, ErrWeakPassword)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugify(t *testing.T) {
	id := uuid.MustParse("3f1c2b7a-0000-4000-8000-000000000000")

	assert.Equal(t, "luigi-s-trattoria-3f1c2b7a", Slugify("Luigi's Trattoria", id))
	assert.Equal(t, "venue-3f1c2b7a", Slugify("!!!", id))
}
