package service

import (
	"log/slog"

	"github.com/kirinyoku/tableorder/internal/notify"
	"github.com/kirinyoku/tableorder/internal/payment"
	"github.com/kirinyoku/tableorder/internal/qr"
	postgres "github.com/kirinyoku/tableorder/internal/repository/postgres"
	redis "github.com/kirinyoku/tableorder/internal/repository/redis"
	"github.com/kirinyoku/tableorder/internal/service/auth"
	"github.com/kirinyoku/tableorder/internal/service/checkout"
	"github.com/kirinyoku/tableorder/internal/service/menu"
	"github.com/kirinyoku/tableorder/internal/service/orders"
	"github.com/kirinyoku/tableorder/internal/service/tables"
	"github.com/kirinyoku/tableorder/internal/service/venue"
)

type Services struct {
	Auth     *auth.Service
	Venue    *venue.Service
	Menu     *menu.Service
	Tables   *tables.Service
	Orders   *orders.Service
	Checkout *checkout.Service
}

type Config struct {
	Auth     auth.Config
	Menu     menu.Config
	Orders   orders.Config
	Checkout checkout.Config
}

// Deps are the shared infrastructure handles. Cache, Limiter, Idempotency,
// Events and Gateway may be nil.
type Deps struct {
	Store       *postgres.Store
	Cache       *redis.Cache
	Limiter     *redis.SlidingWindowLimiter
	Idempotency *redis.IdempotencyStore
	Events      notify.Publisher
	Gateway     payment.Gateway
	QR          *qr.Generator
	Logger      *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	if d.Gateway != nil {
		cfg.Orders.RequireGateway = true
	}
	ordersSvc := orders.New(d.Store, d.Events, d.Limiter, d.Idempotency, d.Logger, cfg.Orders)

	return &Services{
		Auth:     auth.New(d.Store, cfg.Auth),
		Venue:    venue.New(d.Store),
		Menu:     menu.New(d.Store, d.Cache, d.Logger, cfg.Menu),
		Tables:   tables.New(d.Store, d.QR),
		Orders:   ordersSvc,
		Checkout: checkout.New(d.Store, ordersSvc, d.Gateway, d.Logger, cfg.Checkout),
	}
}
