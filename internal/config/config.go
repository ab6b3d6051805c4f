package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Session   SessionConfig
	Stripe    StripeConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
	// PublicBaseURL is the guest-facing origin printed in QR codes and used
	// for payment return URLs.
	PublicBaseURL string
	CORSOrigins   []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// DSN builds the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// StripeConfig is optional. Without a secret key guests settle directly.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// KafkaConfig is optional. Without brokers order events only go to Redis.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RateLimitConfig struct {
	OrdersPerWindow int
	Window          time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	publicBaseURL := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("http://%s:%d", serverHost, serverPort)
	}

	serverCfg := ServerConfig{
		Host:          serverHost,
		Port:          serverPort,
		PublicBaseURL: publicBaseURL,
		CORSOrigins:   listEnv("CORS_ALLOWED_ORIGINS"),
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
		MaxConns: int32(maxConns),
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if len(sessionSecret) < 32 {
		return nil, fmt.Errorf("%s: SESSION_SECRET must have at least 32 characters", op)
	}

	sessionSecure, err := boolEnv("SESSION_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sessionCfg := SessionConfig{
		Secret: sessionSecret,
		TTL:    7 * 24 * time.Hour,
		Secure: sessionSecure,
	}

	stripeCfg := StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
	if stripeCfg.Enabled() && stripeCfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%s: STRIPE_WEBHOOK_SECRET is required with STRIPE_SECRET_KEY", op)
	}

	kafkaTopic := os.Getenv("KAFKA_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "order-events"
	}

	kafkaCfg := KafkaConfig{
		Brokers: listEnv("KAFKA_BROKERS"),
		Topic:   kafkaTopic,
	}

	perMinute, err := intEnv("RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:    serverCfg,
		Postgres:  postgresCfg,
		Redis:     redisCfg,
		Session:   sessionCfg,
		Stripe:    stripeCfg,
		Kafka:     kafkaCfg,
		RateLimit: RateLimitConfig{OrdersPerWindow: perMinute, Window: time.Minute},
	}, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// listEnv splits a comma separated variable, dropping blanks.
func listEnv(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
