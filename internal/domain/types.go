package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Venue struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Currency   string    `json:"currency"`
	ThemeColor string    `json:"theme_color"`
	LogoURL    string    `json:"logo_url"`
	InvoiceSeq int64     `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// VenueRole binds a user to a venue with a role.
type VenueRole struct {
	UserID    uuid.UUID `json:"user_id"`
	VenueID   uuid.UUID `json:"venue_id"`
	VenueName string    `json:"venue_name"`
	Role      Role      `json:"role"`
}

type Area struct {
	ID       uuid.UUID `json:"id"`
	VenueID  uuid.UUID `json:"venue_id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

type Table struct {
	ID        uuid.UUID  `json:"id"`
	VenueID   uuid.UUID  `json:"venue_id"`
	AreaID    *uuid.UUID `json:"area_id,omitempty"`
	Name      string     `json:"name"`
	QRToken   string     `json:"qr_token"`
	CreatedAt time.Time  `json:"created_at"`
}

type MenuCategory struct {
	ID       uuid.UUID `json:"id"`
	VenueID  uuid.UUID `json:"venue_id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

type MenuItem struct {
	ID          uuid.UUID `json:"id"`
	VenueID     uuid.UUID `json:"venue_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	TaxRateBP   int       `json:"tax_rate_bp"`
	Allergens   []string  `json:"allergens"`
	Available   bool      `json:"available"`
	Position    int       `json:"position"`
}

// MenuSection is a category with its items, as shown to guests.
type MenuSection struct {
	Category MenuCategory `json:"category"`
	Items    []MenuItem   `json:"items"`
}

type Order struct {
	ID            uuid.UUID   `json:"id"`
	VenueID       uuid.UUID   `json:"venue_id"`
	TableID       uuid.UUID   `json:"table_id"`
	Status        OrderStatus `json:"status"`
	TotalCents    int64       `json:"total_cents"`
	TaxTotalCents int64       `json:"tax_total_cents"`
	TipCents      int64       `json:"tip_cents"`
	InvoiceNumber string      `json:"invoice_number,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is a snapshot of a menu item at the time it was ordered.
// UnitPriceCents and TaxRateBP are never re-derived from the menu.
type OrderItem struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	TaxRateBP      int       `json:"tax_rate_bp"`
	Quantity       int       `json:"quantity"`
	Modifiers      []string  `json:"modifiers"`
	CreatedAt      time.Time `json:"created_at"`
}

type OrderWithItems struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// CartLine is one line of a guest cart before an order exists.
type CartLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Modifiers  []string  `json:"modifiers,omitempty"`
}

type Checkout struct {
	ID            uuid.UUID       `json:"id"`
	VenueID       uuid.UUID       `json:"venue_id"`
	SessionID     string          `json:"session_id"`
	TableID       uuid.UUID       `json:"table_id"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty"`
	Cart          json.RawMessage `json:"cart"`
	TotalCents    int64           `json:"total_cents"`
	TaxTotalCents int64           `json:"tax_total_cents"`
	TipCents      int64           `json:"tip_cents"`
	Status        CheckoutStatus  `json:"status"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Expired reports whether the checkout can no longer be resumed at now.
func (c *Checkout) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type Payment struct {
	ID              uuid.UUID     `json:"id"`
	VenueID         uuid.UUID     `json:"venue_id"`
	OrderID         uuid.UUID     `json:"order_id"`
	Provider        string        `json:"provider"`
	Reference       string        `json:"reference"`
	ProviderEventID string        `json:"provider_event_id,omitempty"`
	Status          PaymentStatus `json:"status"`
	AmountCents     int64         `json:"amount_cents"`
	CreatedAt       time.Time     `json:"created_at"`
}

type OrderFilter struct {
	Status  OrderStatus
	TableID uuid.UUID
	Since   time.Time
}

// OrderSummary aggregates a venue's orders for the dashboard.
type OrderSummary struct {
	ByStatus     map[OrderStatus]int64 `json:"by_status"`
	RevenueCents int64                 `json:"revenue_cents"`
	TipsCents    int64                 `json:"tips_cents"`
	PaidOrders   int64                 `json:"paid_orders"`
}

// OrderEvent is published after an order change commits.
type OrderEvent struct {
	Type    string      `json:"type"`
	VenueID uuid.UUID   `json:"venue_id"`
	OrderID uuid.UUID   `json:"order_id"`
	TableID uuid.UUID   `json:"table_id"`
	Status  OrderStatus `json:"status"`
	TsUnix  int64       `json:"ts_unix"`
}
