package repository

import "errors"

// Repositories wrap these so services can tell a missing row from a
// constraint violation without knowing the driver.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
