package orders

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item unavailable")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 99")
	ErrInvalidTip          = errors.New("tip must not be negative")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrOrderNotEditable    = errors.New("order can no longer be edited")
	ErrInvalidTransition   = errors.New("illegal order status transition")
	ErrTransitionForbidden = errors.New("status change requires staff")
	ErrAlreadySettled      = errors.New("order already settled")
	ErrRequestInFlight     = errors.New("request with this idempotency key in progress")
	ErrRateLimited         = errors.New("rate limited")
)

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
