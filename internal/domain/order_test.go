package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	roles := []Role{RoleOwner, RoleManager, RoleStaff}

	want := map[Role]map[Role]bool{
		RoleOwner:   {RoleOwner: true, RoleManager: true, RoleStaff: true},
		RoleManager: {RoleOwner: false, RoleManager: true, RoleStaff: true},
		RoleStaff:   {RoleOwner: false, RoleManager: false, RoleStaff: true},
	}

	for _, have := range roles {
		for _, required := range roles {
			t.Run(string(have)+"_"+string(required), func(t *testing.T) {
				assert.Equal(t, want[have][required], HasPermission(have, required))
			})
		}
	}

	assert.False(t, HasPermission(Role("GUEST"), RoleStaff))
	assert.False(t, HasPermission(RoleOwner, Role("")))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)

	_, ok = ParseRole("admin")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderDraft, OrderOpen, true},
		{OrderDraft, OrderPaid, false},
		{OrderDraft, OrderCancelled, false},
		{OrderOpen, OrderPaid, true},
		{OrderOpen, OrderCancelled, true},
		{OrderOpen, OrderFulfilled, false},
		{OrderPaid, OrderFulfilled, true},
		{OrderPaid, OrderCancelled, true},
		{OrderPaid, OrderOpen, false},
		{OrderFulfilled, OrderCancelled, false},
		{OrderCancelled, OrderOpen, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestGuestCanTransition(t *testing.T) {
	assert.True(t, GuestCanTransition(OrderOpen, OrderPaid))
	assert.True(t, GuestCanTransition(OrderOpen, OrderCancelled))
	assert.False(t, GuestCanTransition(OrderPaid, OrderFulfilled))
	assert.False(t, GuestCanTransition(OrderPaid, OrderCancelled))
	assert.False(t, GuestCanTransition(OrderDraft, OrderOpen))
}

func TestComputeTotals_RecomputedFromScratch(t *testing.T) {
	a := OrderItem{UnitPriceCents: 1000, Quantity: 2}
	b := OrderItem{UnitPriceCents: 500, Quantity: 1}
	c := OrderItem{UnitPriceCents: 300, Quantity: 1}

	total, _ := ComputeTotals([]OrderItem{a, b, c})
	assert.Equal(t, int64(2800), total)

	total, _ = ComputeTotals([]OrderItem{c, a, b})
	assert.Equal(t, int64(2800), total)
}

func TestComputeTotals_InclusiveTax(t *testing.T) {
	items := []OrderItem{
		{UnitPriceCents: 1190, Quantity: 1, TaxRateBP: 1900},
		{UnitPriceCents: 1070, Quantity: 2, TaxRateBP: 700},
		{UnitPriceCents: 500, Quantity: 1},
	}

	total, tax := ComputeTotals(items)
	assert.Equal(t, int64(1190+2140+500), total)
	assert.Equal(t, int64(190+140), tax)
}

func TestInvoiceNumber(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-000042", InvoiceNumber(at, 42))
	assert.Equal(t, "2026-1234567", InvoiceNumber(at, 1234567))
}

func TestCheckoutExpired(t *testing.T) {
	now := time.Now()
	c := Checkout{ExpiresAt: now.Add(CheckoutTTL)}

	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(CheckoutTTL)))
	assert.True(t, c.Expired(now.Add(time.Hour)))
}
