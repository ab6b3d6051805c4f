package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tableorder/internal/repository/redis"
	"github.com/kirinyoku/tableorder/internal/uow"
)

const maxTaxRateBP = 10000

type Config struct {
	MenuTTL time.Duration
}

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	uow    *uow.UoW
	logger *slog.Logger
	cfg    Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, logger *slog.Logger, cfg Config) *Service {
	if cfg.MenuTTL <= 0 {
		cfg.MenuTTL = 5 * time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		cache:  cache,
		uow:    uow.NewUoW(store),
		logger: logger,
		cfg:    cfg,
	}
}

// PublicMenu returns the categories of a venue together with their available
// items, as shown to guests. Empty categories are omitted. The result is
// cached per venue until the next menu change commits.
//
// Parameters:
//   - ctx: request-scoped context.
//   - venueID: venue resolved from the guest request.
//
// Returns:
//   - []domain.MenuSection: sections in display order, never nil.
//   - error: any storage error.
func (s *Service) PublicMenu(ctx context.Context, venueID uuid.UUID) ([]domain.MenuSection, error) {
	const op = "service.menu.PublicMenu"

	load := func(ctx context.Context) ([]domain.MenuSection, error) {
		return s.loadSections(ctx, venueID)
	}

	var (
		sections []domain.MenuSection
		err      error
	)
	if s.cache != nil {
		sections, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyMenu(venueID), s.cfg.MenuTTL, load)
	} else {
		sections, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sections, nil
}

func (s *Service) loadSections(ctx context.Context, venueID uuid.UUID) ([]domain.MenuSection, error) {
	repo := s.store.Scope(venueID).Menu()

	cats, err := repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	items, err := repo.Items(ctx, true)
	if err != nil {
		return nil, err
	}

	byCat := make(map[uuid.UUID][]domain.MenuItem, len(cats))
	for _, it := range items {
		byCat[it.CategoryID] = append(byCat[it.CategoryID], it)
	}

	sections := make([]domain.MenuSection, 0, len(cats))
	for _, c := range cats {
		if len(byCat[c.ID]) == 0 {
			continue
		}
		sections = append(sections, domain.MenuSection{Category: c, Items: byCat[c.ID]})
	}

	return sections, nil
}

// invalidate drops the cached public menu once the surrounding transaction
// commits.
func (s *Service) invalidate(venueID uuid.UUID) uow.AfterCommit {
	return func(ctx context.Context) {
		if s.cache == nil {
			return
		}
		if err := s.cache.InvalidateMenu(ctx, venueID); err != nil {
			s.logger.Warn("invalidate menu cache failed", "venue_id", venueID, "error", err)
		}
	}
}

func (s *Service) Categories(ctx context.Context, venueID uuid.UUID) ([]domain.MenuCategory, error) {
	const op = "service.menu.Categories"

	cats, err := s.store.Scope(venueID).Menu().Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cats == nil {
		cats = []domain.MenuCategory{}
	}

	return cats, nil
}

// CreateCategory appends a category to the venue menu.
//
// Returns:
//   - error: menu.ErrCategoryConflict if the venue already has the name.
func (s *Service) CreateCategory(ctx context.Context, venueID uuid.UUID, name string) (*domain.MenuCategory, error) {
	const op = "service.menu.CreateCategory"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	var cat *domain.MenuCategory
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		cat, err = s.store.Scope(venueID).With(tx).Menu().CreateCategory(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrCategoryConflict
			}
			return err
		}
		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cat, nil
}

func (s *Service) RenameCategory(ctx context.Context, venueID, id uuid.UUID, name string) (*domain.MenuCategory, error) {
	const op = "service.menu.RenameCategory"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	var cat *domain.MenuCategory
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		cat, err = s.store.Scope(venueID).With(tx).Menu().RenameCategory(ctx, id, name)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrCategoryConflict
		case err != nil:
			return err
		}
		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cat, nil
}

// DeleteCategory removes a category that no longer holds items.
//
// Returns:
//   - error: menu.ErrCategoryNotFound if the category is not in the venue.
//   - error: menu.ErrCategoryNotEmpty if items still reference it.
func (s *Service) DeleteCategory(ctx context.Context, venueID, id uuid.UUID) error {
	const op = "service.menu.DeleteCategory"

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		err := s.store.Scope(venueID).With(tx).Menu().DeleteCategory(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrCategoryNotEmpty
		case err != nil:
			return err
		}
		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReorderCategories assigns positions in the order of ids. All ids are
// updated in one transaction.
func (s *Service) ReorderCategories(ctx context.Context, venueID uuid.UUID, ids []uuid.UUID) error {
	const op = "service.menu.ReorderCategories"

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Scope(venueID).With(tx).Menu().ReorderCategories(ctx, ids); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Items lists every item of the venue, available or not.
func (s *Service) Items(ctx context.Context, venueID uuid.UUID) ([]domain.MenuItem, error) {
	const op = "service.menu.Items"

	items, err := s.store.Scope(venueID).Menu().Items(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []domain.MenuItem{}
	}

	return items, nil
}

// ItemInput describes a new menu item. The category is addressed by name and
// created on first use, or by id when Category is empty.
type ItemInput struct {
	Category    string
	CategoryID  uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	TaxRateBP   int
	Allergens   []string
	Available   *bool
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(in.Category) == "" && in.CategoryID == uuid.Nil {
		return ErrCategoryNotFound
	}
	if in.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if in.TaxRateBP < 0 || in.TaxRateBP > maxTaxRateBP {
		return ErrInvalidTaxRate
	}
	return nil
}

// CreateItem adds an item, upserting its category by name in the same
// transaction. Items are available unless stated otherwise.
//
// Returns:
//   - error: menu.ErrCategoryNotFound if CategoryID is not in the venue.
//   - error: menu.ErrInvalidName / ErrInvalidPrice / ErrInvalidTaxRate.
func (s *Service) CreateItem(ctx context.Context, venueID uuid.UUID, in ItemInput) (*domain.MenuItem, error) {
	const op = "service.menu.CreateItem"

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}

	var item *domain.MenuItem
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		repo := s.store.Scope(venueID).With(tx).Menu()

		categoryID := in.CategoryID
		if name := strings.TrimSpace(in.Category); name != "" {
			cat, err := repo.UpsertCategory(ctx, name)
			if err != nil {
				return err
			}
			categoryID = cat.ID
		}

		var err error
		item, err = repo.CreateItem(ctx, postgresrepo.MenuItemInput{
			CategoryID:  categoryID,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			PriceCents:  in.PriceCents,
			TaxRateBP:   in.TaxRateBP,
			Allergens:   in.Allergens,
			Available:   available,
		})
		if err != nil {
			// the composite key (venue_id, category_id) rejects foreign categories
			if errors.Is(err, repository.ErrConflict) {
				return ErrCategoryNotFound
			}
			return err
		}

		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// ItemPatch carries optional changes. Nil fields are left unchanged.
type ItemPatch struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	PriceCents  *int64
	TaxRateBP   *int
	Allergens   []string
	Available   *bool
}

func (p ItemPatch) validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidName
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if p.TaxRateBP != nil && (*p.TaxRateBP < 0 || *p.TaxRateBP > maxTaxRateBP) {
		return ErrInvalidTaxRate
	}
	return nil
}

// UpdateItem applies p to an item. Existing order lines keep the price they
// were ordered at.
func (s *Service) UpdateItem(ctx context.Context, venueID, id uuid.UUID, p ItemPatch) (*domain.MenuItem, error) {
	const op = "service.menu.UpdateItem"

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var item *domain.MenuItem
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		item, err = s.store.Scope(venueID).With(tx).Menu().UpdateItem(ctx, id, postgresrepo.MenuItemUpdate{
			CategoryID:  p.CategoryID,
			Name:        p.Name,
			Description: p.Description,
			PriceCents:  p.PriceCents,
			TaxRateBP:   p.TaxRateBP,
			Allergens:   p.Allergens,
			Available:   p.Available,
		})
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrItemNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrCategoryNotFound
		case err != nil:
			return err
		}
		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (s *Service) SetAvailability(ctx context.Context, venueID, id uuid.UUID, available bool) (*domain.MenuItem, error) {
	return s.UpdateItem(ctx, venueID, id, ItemPatch{Available: &available})
}

func (s *Service) DeleteItem(ctx context.Context, venueID, id uuid.UUID) error {
	const op = "service.menu.DeleteItem"

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Scope(venueID).With(tx).Menu().DeleteItem(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		after(s.invalidate(venueID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
