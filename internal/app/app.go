package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tableorder/internal/config"
	"github.com/kirinyoku/tableorder/internal/notify"
	"github.com/kirinyoku/tableorder/internal/payment"
	"github.com/kirinyoku/tableorder/internal/postgres"
	"github.com/kirinyoku/tableorder/internal/qr"
	redisx "github.com/kirinyoku/tableorder/internal/redis"
	kafkarepo "github.com/kirinyoku/tableorder/internal/repository/kafka"
	postgresrepo "github.com/kirinyoku/tableorder/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tableorder/internal/repository/redis"
	"github.com/kirinyoku/tableorder/internal/service"
	"github.com/kirinyoku/tableorder/internal/service/auth"
	"github.com/kirinyoku/tableorder/internal/service/checkout"
	"github.com/kirinyoku/tableorder/internal/session"
	httpgin "github.com/kirinyoku/tableorder/internal/transport/http/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	hubBuffer       = 32
	idempotencyTTL  = 24 * time.Hour
	idempotencyLock = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *redis.Client
	pubsub     *redisrepo.OrdersPubSub
	hub        *notify.Hub
	kafka      *kafkarepo.OrderPublisher
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	pgxPool, err := postgres.New(context.Background(), postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.NewCache(rdb)
	pubsub := redisrepo.NewOrdersPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "orders", cfg.RateLimit.OrdersPerWindow, cfg.RateLimit.Window)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, idempotencyTTL, idempotencyLock)

	// Order events go to Redis for the kitchen display and, when configured,
	// to Kafka for downstream consumers.
	events := notify.Fanout{pubsub}
	var kafkaPub *kafkarepo.OrderPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub = kafkarepo.NewOrderPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		events = append(events, kafkaPub)
		logger.Info("kafka order events enabled", "topic", cfg.Kafka.Topic)
	}

	var gateway payment.Gateway
	if cfg.Stripe.Enabled() {
		gateway = payment.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
		logger.Info("stripe checkout enabled")
	} else {
		logger.Info("no payment provider configured, guests settle directly")
	}

	// Initialize services
	services := service.NewServices(service.Deps{
		Store:       store,
		Cache:       cache,
		Limiter:     limiter,
		Idempotency: idempotencyStore,
		Events:      events,
		Gateway:     gateway,
		QR:          qr.NewGenerator(cfg.Server.PublicBaseURL),
		Logger:      logger,
	}, service.Config{
		Auth:     auth.Config{},
		Checkout: checkout.Config{PublicBaseURL: cfg.Server.PublicBaseURL},
	})

	hub := notify.NewHub(hubBuffer)

	// Initialize Gin router
	router := httpgin.NewRouter(services, httpgin.Options{
		Sessions:    session.NewCodec(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure),
		Hub:         hub,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pool:   pgxPool,
		rdb:    rdb,
		pubsub: pubsub,
		hub:    hub,
		kafka:  kafkaPub,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Feed committed order events from every instance into the local hub
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, a.hub.Dispatch)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("order events subscription: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Warn("close kafka writer", "error", err)
		}
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("close redis", "error", err)
	}
	a.pool.Close()
}
