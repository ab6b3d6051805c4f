package menu

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryConflict = errors.New("category with this name already exists")
	ErrCategoryNotEmpty = errors.New("category still has items")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidTaxRate   = errors.New("tax rate must be between 0 and 10000 basis points")
)
