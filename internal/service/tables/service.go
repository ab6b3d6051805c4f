package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/qr"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
)

const tokenAttempts = 3

type Service struct {
	store    *postgresrepo.Store
	qr       *qr.Generator
	newToken func() (string, error)
}

func New(store *postgresrepo.Store, gen *qr.Generator) *Service {
	return &Service{
		store:    store,
		qr:       gen,
		newToken: qr.NewToken,
	}
}

func (s *Service) Areas(ctx context.Context, venueID uuid.UUID) ([]domain.Area, error) {
	const op = "service.tables.Areas"

	areas, err := s.store.Scope(venueID).Areas().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if areas == nil {
		areas = []domain.Area{}
	}

	return areas, nil
}

func (s *Service) CreateArea(ctx context.Context, venueID uuid.UUID, name string) (*domain.Area, error) {
	const op = "service.tables.CreateArea"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	a, err := s.store.Scope(venueID).Areas().Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

// DeleteArea removes an area. Its tables stay and lose their area.
func (s *Service) DeleteArea(ctx context.Context, venueID, id uuid.UUID) error {
	const op = "service.tables.DeleteArea"

	if err := s.store.Scope(venueID).Areas().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAreaNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) Tables(ctx context.Context, venueID uuid.UUID, areaID *uuid.UUID) ([]domain.Table, error) {
	const op = "service.tables.Tables"

	list, err := s.store.Scope(venueID).Tables().List(ctx, areaID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []domain.Table{}
	}

	return list, nil
}

// CreateTable adds a table with a freshly generated QR token.
//
// Parameters:
//   - ctx: request-scoped context.
//   - venueID: venue of the session.
//   - areaID: optional area of the same venue.
//   - name: display name, e.g. "Terrace 4".
//
// Returns:
//   - *domain.Table: the created table including its token.
//   - error: tables.ErrAreaNotFound if areaID is not an area of the venue.
//   - error: tables.ErrTokenConflict if no unique token could be drawn.
func (s *Service) CreateTable(ctx context.Context, venueID uuid.UUID, areaID *uuid.UUID, name string) (*domain.Table, error) {
	const op = "service.tables.CreateTable"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	scope := s.store.Scope(venueID)

	if areaID != nil {
		if _, err := scope.Areas().Get(ctx, *areaID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrAreaNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	for range tokenAttempts {
		token, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		t, err := scope.Tables().Create(ctx, postgresrepo.TableInput{AreaID: areaID, Name: name, QRToken: token})
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil, fmt.Errorf("%s: %w", op, ErrTokenConflict)
}

// RotateToken replaces the QR token of a table. Printed codes carrying the
// old token stop working immediately.
func (s *Service) RotateToken(ctx context.Context, venueID, id uuid.UUID) (*domain.Table, error) {
	const op = "service.tables.RotateToken"

	repo := s.store.Scope(venueID).Tables()

	for range tokenAttempts {
		token, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		t, err := repo.UpdateToken(ctx, id, token)
		switch {
		case err == nil:
			return t, nil
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrTableNotFound)
		case !errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil, fmt.Errorf("%s: %w", op, ErrTokenConflict)
}

func (s *Service) DeleteTable(ctx context.Context, venueID, id uuid.UUID) error {
	const op = "service.tables.DeleteTable"

	if err := s.store.Scope(venueID).Tables().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTableNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// QRCode renders the printable code of a table together with the URL it
// encodes.
func (s *Service) QRCode(ctx context.Context, venueID, id uuid.UUID) ([]byte, string, error) {
	const op = "service.tables.QRCode"

	t, err := s.store.Scope(venueID).Tables().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrTableNotFound)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	png, err := s.qr.PNG(venueID, t.QRToken)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return png, s.qr.TableURL(venueID, t.QRToken), nil
}

// Resolution is what a scanned token reveals to an anonymous client.
type Resolution struct {
	VenueID   uuid.UUID `json:"venue_id"`
	TableID   uuid.UUID `json:"table_id"`
	TableName string    `json:"table_name"`
}

// Resolve maps a QR token to its venue and table without knowing the venue
// up front.
func (s *Service) Resolve(ctx context.Context, token string) (*Resolution, error) {
	const op = "service.tables.Resolve"

	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrTableNotFound)
	}

	t, err := s.store.Directory().TableByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTableNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Resolution{VenueID: t.VenueID, TableID: t.ID, TableName: t.Name}, nil
}

// TableByToken looks a token up inside one venue. A token of another venue
// is reported as not found.
func (s *Service) TableByToken(ctx context.Context, venueID uuid.UUID, token string) (*domain.Table, error) {
	const op = "service.tables.TableByToken"

	t, err := s.store.Scope(venueID).Tables().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTableNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}
