package venue

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
)

var (
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
	colorRe    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Venue, error) {
	const op = "service.venue.Get"

	v, err := s.store.Venues().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrVenueNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

// Settings is a partial update of the venue. Nil fields are left unchanged;
// an empty LogoURL removes the logo.
type Settings struct {
	Name       *string
	Currency   *string
	ThemeColor *string
	LogoURL    *string
}

func (st *Settings) normalize() error {
	if st.Name != nil {
		n := strings.TrimSpace(*st.Name)
		if n == "" {
			return ErrInvalidName
		}
		st.Name = &n
	}

	if st.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*st.Currency))
		if !currencyRe.MatchString(c) {
			return ErrInvalidCurrency
		}
		st.Currency = &c
	}

	if st.ThemeColor != nil && !colorRe.MatchString(*st.ThemeColor) {
		return ErrInvalidColor
	}

	if st.LogoURL != nil && *st.LogoURL != "" {
		u, err := url.Parse(*st.LogoURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidLogoURL
		}
	}

	return nil
}

// Update changes the venue settings.
//
// Returns:
//   - error: venue.ErrInvalidName / ErrInvalidCurrency / ErrInvalidColor /
//     ErrInvalidLogoURL when a field is malformed.
//   - error: venue.ErrVenueNotFound if the venue does not exist.
func (s *Service) Update(ctx context.Context, id uuid.UUID, st Settings) (*domain.Venue, error) {
	const op = "service.venue.Update"

	if err := st.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v, err := s.store.Venues().Update(ctx, id, postgresrepo.VenueUpdate{
		Name:       st.Name,
		Currency:   st.Currency,
		ThemeColor: st.ThemeColor,
		LogoURL:    st.LogoURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrVenueNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}
