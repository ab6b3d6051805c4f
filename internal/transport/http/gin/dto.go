package httpgin

import (
	"time"

	"github.com/kirinyoku/tableorder/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// guest

type CreateOrderRequest struct {
	QRToken string `json:"qr_token" binding:"required"`
}

type AttachItemRequest struct {
	MenuItemID string   `json:"menu_item_id" binding:"required,uuid"`
	Quantity   int      `json:"quantity"`
	Modifiers  []string `json:"modifiers"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SettleRequest struct {
	TipCents int64 `json:"tip_cents"`
}

type CartLineRequest struct {
	MenuItemID string   `json:"menu_item_id" binding:"required,uuid"`
	Quantity   int      `json:"quantity"`
	Modifiers  []string `json:"modifiers"`
}

type StartCheckoutRequest struct {
	QRToken string            `json:"qr_token" binding:"required"`
	Items   []CartLineRequest `json:"items" binding:"required,min=1,dive"`
}

type PayRequest struct {
	TipCents int64 `json:"tip_cents"`
}

type TableLandingResponse struct {
	Venue *domain.Venue `json:"venue"`
	Table *domain.Table `json:"table"`
}

type ResolveTokenResponse struct {
	VenueID   string `json:"venue_id"`
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
}

type WebhookResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
	Underpaid bool `json:"underpaid,omitempty"`
}

// auth

type SignupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name" binding:"required"`
	VenueName string `json:"venue_name" binding:"required"`
	Currency  string `json:"currency"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	VenueID  string `json:"venue_id" binding:"omitempty,uuid"`
}

type SwitchVenueRequest struct {
	VenueID string `json:"venue_id" binding:"required,uuid"`
}

type ChangePasswordRequest struct {
	Current string `json:"current_password" binding:"required"`
	New     string `json:"new_password" binding:"required"`
}

// admin

type UpdateVenueRequest struct {
	Name       *string `json:"name"`
	Currency   *string `json:"currency"`
	ThemeColor *string `json:"theme_color"`
	LogoURL    *string `json:"logo_url"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

type CreateItemRequest struct {
	Category    string   `json:"category"`
	CategoryID  string   `json:"category_id" binding:"omitempty,uuid"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	TaxRateBP   int      `json:"tax_rate_bp"`
	Allergens   []string `json:"allergens"`
	Available   *bool    `json:"available"`
}

type UpdateItemRequest struct {
	CategoryID  *string  `json:"category_id" binding:"omitempty,uuid"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	PriceCents  *int64   `json:"price_cents"`
	TaxRateBP   *int     `json:"tax_rate_bp"`
	Allergens   []string `json:"allergens"`
	Available   *bool    `json:"available"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

type AreaRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTableRequest struct {
	AreaID *string `json:"area_id" binding:"omitempty,uuid"`
	Name   string  `json:"name" binding:"required"`
}

// parseSince accepts an RFC 3339 timestamp or a plain date. Empty means
// no lower bound.
func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
