package ratelimit

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/licitaflash/licitaflash/internal/pkg/config"
)

// limiterDB keeps limiter counters apart from quota counters on DB 0.
const limiterDB = 2

// NewStorage builds limiter storage on the same redis server as the cache
// client. Without a reachable server it yields nil, which makes the limiter
// keep counters in memory.
func NewStorage(client *goredis.Client) fiber.Storage {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("rate limiter falls back to in-memory counters: %v", err)
		return nil
	}
	opts := client.Options()
	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: limiterDB,
		Reset:    false,
	})
}

// New returns a per-client limiter allowing max requests per window. Limiters
// sharing a storage need distinct scopes.
func New(storage fiber.Storage, scope string, max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return scope + ":" + c.IP()
		},
		Storage: storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited"})
		},
	})
}

// TrustProxies makes c.IP() read proxy.Header, but only on requests whose
// peer address is one of proxy.Trusted. Without a header every request is
// keyed by its socket address.
func TrustProxies(cfg fiber.Config, proxy config.Proxy) fiber.Config {
	if proxy.Header == "" {
		cfg.ProxyHeader = ""
		return cfg
	}
	cfg.ProxyHeader = proxy.Header
	cfg.EnableTrustedProxyCheck = true
	cfg.TrustedProxies = append([]string(nil), proxy.Trusted...)
	cfg.EnableIPValidation = true
	return cfg
}
