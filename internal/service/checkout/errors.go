package checkout

import "errors"

var (
	ErrCheckoutNotFound = errors.New("checkout not found")
	ErrCheckoutExpired  = errors.New("checkout expired")
	ErrCheckoutClosed   = errors.New("checkout already completed or failed")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoGateway        = errors.New("no payment provider configured")
)
