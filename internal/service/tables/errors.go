package tables

import "errors"

var (
	ErrAreaNotFound  = errors.New("area not found")
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidName   = errors.New("name must not be empty")
	ErrTokenConflict = errors.New("could not allocate a unique table token")
)
