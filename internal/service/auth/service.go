package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	"github.com/kirinyoku/tableorder/internal/session"
	"github.com/kirinyoku/tableorder/internal/uow"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen  = 8
	defaultCurrency = "EUR"
	defaultColor    = "#1f2937"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

type Config struct {
	BcryptCost int
}

type Service struct {
	store *postgresrepo.Store
	uow   *uow.UoW
	cost  int
	dummy []byte
}

func New(store *postgresrepo.Store, cfg Config) *Service {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	// compared against when the email is unknown so both paths cost one hash
	dummy, _ := bcrypt.GenerateFromPassword([]byte("tableorder-dummy-password"), cfg.BcryptCost)

	return &Service{
		store: store,
		uow:   uow.NewUoW(store),
		cost:  cfg.BcryptCost,
		dummy: dummy,
	}
}

type SignupInput struct {
	Email     string
	Password  string
	Name      string
	VenueName string
	Currency  string
}

func (in *SignupInput) validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(in.Email); err != nil || !strings.Contains(in.Email, "@") {
		return ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLen {
		return ErrWeakPassword
	}
	in.Name = strings.TrimSpace(in.Name)
	in.VenueName = strings.TrimSpace(in.VenueName)
	if in.Name == "" || in.VenueName == "" {
		return ErrInvalidName
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = defaultCurrency
	}
	return nil
}

// Signup registers a user together with a new venue they own. User, venue
// and the OWNER binding are created in one transaction.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: credentials, display name and venue name.
//
// Returns:
//   - session.Session: a session for the new venue with role OWNER.
//   - error: auth.ErrEmailTaken if the email is registered.
//   - error: auth.ErrInvalidEmail / ErrWeakPassword / ErrInvalidName.
func (s *Service) Signup(ctx context.Context, in SignupInput) (session.Session, error) {
	const op = "service.auth.Signup"

	if err := in.validate(); err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	user := &domain.User{Email: in.Email, Name: in.Name, PasswordHash: string(hash)}
	venue := &domain.Venue{
		ID:         uuid.New(),
		Name:       in.VenueName,
		Currency:   in.Currency,
		ThemeColor: defaultColor,
	}
	venue.Slug = Slugify(in.VenueName, venue.ID)

	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		users := s.store.Users().With(tx)

		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return err
		}

		if err := s.store.Venues().With(tx).Create(ctx, venue); err != nil {
			return err
		}

		return users.AddRole(ctx, user.ID, venue.ID, domain.RoleOwner)
	})
	if err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return session.New(*user, venue.ID, domain.RoleOwner), nil
}

// Login verifies the credentials and opens a session. With venueID set the
// session is bound to that venue, otherwise to the first venue the user
// holds a role in.
//
// Returns:
//   - error: auth.ErrInvalidCredentials on unknown email or wrong password.
//   - error: auth.ErrNoVenueAccess if the user has no role in the venue.
func (s *Service) Login(ctx context.Context, email, password string, venueID uuid.UUID) (session.Session, error) {
	const op = "service.auth.Login"

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
			return session.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	roles, err := s.store.Users().Roles(ctx, user.ID)
	if err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range roles {
		if venueID == uuid.Nil || r.VenueID == venueID {
			return session.New(*user, r.VenueID, r.Role), nil
		}
	}

	return session.Session{}, fmt.Errorf("%s: %w", op, ErrNoVenueAccess)
}

// SwitchVenue issues a session for another venue of the same user.
func (s *Service) SwitchVenue(ctx context.Context, userID, venueID uuid.UUID) (session.Session, error) {
	const op = "service.auth.SwitchVenue"

	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Session{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	role, err := s.store.Users().Role(ctx, userID, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Session{}, fmt.Errorf("%s: %w", op, ErrNoVenueAccess)
		}
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return session.New(*user, venueID, role), nil
}

func (s *Service) Venues(ctx context.Context, userID uuid.UUID) ([]domain.VenueRole, error) {
	const op = "service.auth.Venues"

	roles, err := s.store.Users().Roles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if roles == nil {
		roles = []domain.VenueRole{}
	}

	return roles, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	const op = "service.auth.ChangePassword"

	if len(next) < MinPasswordLen {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Users().UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Slugify derives a URL slug from a venue name. The id suffix keeps slugs
// unique across venues with the same name.
func Slugify(name string, id uuid.UUID) string {
	base := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "venue"
	}
	if len(base) > 40 {
		base = strings.TrimRight(base[:40], "-")
	}
	return base + "-" + id.String()[:8]
}
