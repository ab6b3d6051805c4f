package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/repository"
)

type MenuRepo struct {
	scoped
}

func (r *MenuRepo) With(db DB) *MenuRepo {
	cp := *r
	cp.db = db
	return &cp
}

const (
	categoryColumns = `id, venue_id, name, position`
	itemColumns     = `id, venue_id, category_id, name, description, price, tax_rate, allergens, available, position`
)

func scanCategory(row interface{ Scan(dest ...any) error }) (*domain.MenuCategory, error) {
	var c domain.MenuCategory
	if err := row.Scan(&c.ID, &c.VenueID, &c.Name, &c.Position); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanItem(row interface{ Scan(dest ...any) error }) (*domain.MenuItem, error) {
	var it domain.MenuItem
	if err := row.Scan(
		&it.ID, &it.VenueID, &it.CategoryID, &it.Name, &it.Description,
		&it.PriceCents, &it.TaxRateBP, &it.Allergens, &it.Available, &it.Position,
	); err != nil {
		return nil, err
	}
	if it.Allergens == nil {
		it.Allergens = []string{}
	}
	return &it, nil
}

func (r *MenuRepo) Categories(ctx context.Context) ([]domain.MenuCategory, error) {
	const op = "postgres.MenuRepo.Categories"

	w := r.where()
	rows, err := r.handle().Query(ctx,
		`SELECT `+categoryColumns+` FROM menu_categories `+w.String()+` ORDER BY position, name`,
		w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.MenuCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// CreateCategory appends a category.
//
// Returns:
//   - error: repository.ErrConflict if the name is already used in the venue.
func (r *MenuRepo) CreateCategory(ctx context.Context, name string) (*domain.MenuCategory, error) {
	const op = "postgres.MenuRepo.CreateCategory"

	c, err := scanCategory(r.handle().QueryRow(ctx, `
		INSERT INTO menu_categories (id, venue_id, name, position)
		SELECT $1, $2, $3, COALESCE(MAX(position) + 1, 0) FROM menu_categories WHERE venue_id = $2
		RETURNING `+categoryColumns,
		uuid.New(), r.venueID, name))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return c, nil
}

// UpsertCategory returns the category with the given name, creating it when
// the venue has none.
func (r *MenuRepo) UpsertCategory(ctx context.Context, name string) (*domain.MenuCategory, error) {
	const op = "postgres.MenuRepo.UpsertCategory"

	c, err := scanCategory(r.handle().QueryRow(ctx, `
		INSERT INTO menu_categories (id, venue_id, name, position)
		SELECT $1, $2, $3, COALESCE(MAX(position) + 1, 0) FROM menu_categories WHERE venue_id = $2
		ON CONFLICT (venue_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+categoryColumns,
		uuid.New(), r.venueID, name))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return c, nil
}

func (r *MenuRepo) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*domain.MenuCategory, error) {
	const op = "postgres.MenuRepo.RenameCategory"

	w := r.where().and("id = ?", id)
	set := w.arg(name)
	c, err := scanCategory(r.handle().QueryRow(ctx,
		`UPDATE menu_categories SET name = `+set+` `+w.String()+` RETURNING `+categoryColumns,
		w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return c, nil
}

// DeleteCategory removes an empty category. Categories that still hold
// items are reported as repository.ErrConflict.
func (r *MenuRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.MenuRepo.DeleteCategory"

	w := r.where().and("id = ?", id)
	return r.execOne(ctx, op, `DELETE FROM menu_categories `+w.String(), w.Args())
}

// ReorderCategories sets position = index for each id. Every id must belong
// to the venue.
func (r *MenuRepo) ReorderCategories(ctx context.Context, ids []uuid.UUID) error {
	const op = "postgres.MenuRepo.ReorderCategories"

	for i, id := range ids {
		w := r.where().and("id = ?", id)
		pos := w.arg(i)
		tag, err := r.handle().Exec(ctx,
			`UPDATE menu_categories SET position = `+pos+` `+w.String(), w.Args()...)
		if err != nil {
			return wrapDBErr(op, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: category %s: %w", op, id, repository.ErrNotFound)
		}
	}

	return nil
}

// Items lists menu items ordered for display.
func (r *MenuRepo) Items(ctx context.Context, onlyAvailable bool) ([]domain.MenuItem, error) {
	const op = "postgres.MenuRepo.Items"

	w := r.where()
	if onlyAvailable {
		w.and("available = ?", true)
	}

	rows, err := r.handle().Query(ctx,
		`SELECT `+itemColumns+` FROM menu_items `+w.String()+` ORDER BY category_id, position, name`,
		w.Args()...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *MenuRepo) Item(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	const op = "postgres.MenuRepo.Item"

	w := r.where().and("id = ?", id)
	it, err := scanItem(r.handle().QueryRow(ctx,
		`SELECT `+itemColumns+` FROM menu_items `+w.String(), w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return it, nil
}

// MenuItemInput is the payload for a new menu item.
type MenuItemInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	TaxRateBP   int
	Allergens   []string
	Available   bool
}

func (r *MenuRepo) CreateItem(ctx context.Context, in MenuItemInput) (*domain.MenuItem, error) {
	const op = "postgres.MenuRepo.CreateItem"

	allergens := in.Allergens
	if allergens == nil {
		allergens = []string{}
	}

	it, err := scanItem(r.handle().QueryRow(ctx, `
		INSERT INTO menu_items (id, venue_id, category_id, name, description, price, tax_rate, allergens, available, position)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE(MAX(position) + 1, 0)
		FROM menu_items WHERE venue_id = $2 AND category_id = $3
		RETURNING `+itemColumns,
		uuid.New(), r.venueID, in.CategoryID, in.Name, in.Description,
		in.PriceCents, in.TaxRateBP, allergens, in.Available))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return it, nil
}

// MenuItemUpdate carries optional changes. Nil fields are left unchanged.
type MenuItemUpdate struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	PriceCents  *int64
	TaxRateBP   *int
	Allergens   []string
	Available   *bool
}

func (r *MenuRepo) UpdateItem(ctx context.Context, id uuid.UUID, u MenuItemUpdate) (*domain.MenuItem, error) {
	const op = "postgres.MenuRepo.UpdateItem"

	w := r.where().and("id = ?", id)

	sets := []string{}
	set := func(col string, v any) {
		sets = append(sets, col+" = "+w.arg(v))
	}
	if u.CategoryID != nil {
		set("category_id", *u.CategoryID)
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.PriceCents != nil {
		set("price", *u.PriceCents)
	}
	if u.TaxRateBP != nil {
		set("tax_rate", *u.TaxRateBP)
	}
	if u.Allergens != nil {
		set("allergens", u.Allergens)
	}
	if u.Available != nil {
		set("available", *u.Available)
	}
	if len(sets) == 0 {
		return r.Item(ctx, id)
	}

	q := `UPDATE menu_items SET ` + joinComma(sets) + ` ` + w.String() + ` RETURNING ` + itemColumns
	it, err := scanItem(r.handle().QueryRow(ctx, q, w.Args()...))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return it, nil
}

func (r *MenuRepo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*domain.MenuItem, error) {
	return r.UpdateItem(ctx, id, MenuItemUpdate{Available: &available})
}

func (r *MenuRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.MenuRepo.DeleteItem"

	w := r.where().and("id = ?", id)
	return r.execOne(ctx, op, `DELETE FROM menu_items `+w.String(), w.Args())
}
