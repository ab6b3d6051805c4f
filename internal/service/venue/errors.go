package venue

import "errors"

var (
	ErrVenueNotFound   = errors.New("venue not found")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrInvalidCurrency = errors.New("currency must be a 3 letter ISO 4217 code")
	ErrInvalidColor    = errors.New("theme color must look like #1a2b3c")
	ErrInvalidLogoURL  = errors.New("logo url must be an absolute http(s) url")
)
