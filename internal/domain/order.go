package domain

import (
	"fmt"
	"math"
	"time"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderOpen      OrderStatus = "OPEN"
	OrderPaid      OrderStatus = "PAID"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type CheckoutStatus string

const (
	CheckoutPending    CheckoutStatus = "PENDING"
	CheckoutProcessing CheckoutStatus = "PROCESSING"
	CheckoutCompleted  CheckoutStatus = "COMPLETED"
	CheckoutFailed     CheckoutStatus = "FAILED"
)

type PaymentStatus string

const (
	PaymentSettled PaymentStatus = "SETTLED"
	PaymentFailed  PaymentStatus = "FAILED"
)

// CheckoutTTL is how long a checkout session can be resumed.
const CheckoutTTL = 30 * time.Minute

var transitions = map[OrderStatus][]OrderStatus{
	OrderDraft:     {OrderOpen},
	OrderOpen:      {OrderPaid, OrderCancelled},
	OrderPaid:      {OrderFulfilled, OrderCancelled},
	OrderFulfilled: nil,
	OrderCancelled: nil,
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderFulfilled || s == OrderCancelled
}

// Settled reports whether a payment has been recorded for an order in s.
func (s OrderStatus) Settled() bool {
	return s == OrderPaid || s == OrderFulfilled
}

// CanTransition reports whether from -> to is a legal order transition.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GuestCanTransition reports whether an unauthenticated caller may move an
// order from -> to. Only the public checkout transitions are allowed.
func GuestCanTransition(from, to OrderStatus) bool {
	return from == OrderOpen && (to == OrderPaid || to == OrderCancelled)
}

// LineTax returns the tax share contained in a tax-inclusive line amount.
func LineTax(lineCents int64, rateBP int) int64 {
	if rateBP <= 0 || lineCents == 0 {
		return 0
	}
	return int64(math.Round(float64(lineCents) * float64(rateBP) / float64(10000+rateBP)))
}

// ComputeTotals sums every line from scratch.
func ComputeTotals(items []OrderItem) (total, tax int64) {
	for _, it := range items {
		line := it.UnitPriceCents * int64(it.Quantity)
		total += line
		tax += LineTax(line, it.TaxRateBP)
	}
	return total, tax
}

// InvoiceNumber formats a venue invoice sequence value as {year}-{seq}.
func InvoiceNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%d-%06d", at.Year(), seq)
}
