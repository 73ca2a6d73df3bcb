package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/licitaflash/licitaflash/internal/pkg/env"
)

// ErrMissing is wrapped by Validate for every required key that is unset.
var ErrMissing = errors.New("missing required configuration")

type Database struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Cache struct {
	Host     string
	Port     string
	Password string
}

type Stripe struct {
	SecretKey     string
	WebhookSecret string
	PriceIDs      map[string]string
	OrderingFence bool
}

// Proxy names the header carrying the client address and the peers allowed
// to set it. Requests from any other peer are keyed by their socket address.
type Proxy struct {
	Header  string
	Trusted []string
}

// Config is the process configuration, assembled once at startup and passed
// to the components that need it.
type Config struct {
	AppHost       string
	AppPort       string
	AppEnv        string
	PublicSiteURL string
	AuthJWTSecret string
	Database      Database
	Cache         Cache
	Stripe        Stripe
	Proxy         Proxy
}

// Load reads the configuration from the loaded .env values and the process
// environment. It does not validate.
func Load() Config {
	return Config{
		AppHost:       env.GetEnv("APP_HOST", "localhost"),
		AppPort:       env.GetEnv("APP_PORT", "4000"),
		AppEnv:        env.GetEnv("APP_ENV", "prod"),
		PublicSiteURL: strings.TrimRight(env.GetEnv("PUBLIC_SITE_URL", ""), "/"),
		AuthJWTSecret: env.GetEnv("AUTH_JWT_SECRET", ""),
		Database: Database{
			Driver:   strings.ToLower(env.GetEnv("DB_DRIVER", "postgres")),
			URL:      env.GetEnv("DATABASE_URL", ""),
			Host:     env.GetEnv("DB_HOST", ""),
			Port:     env.GetEnv("DB_PORT", ""),
			User:     env.GetEnv("DB_USER", ""),
			Password: env.GetEnv("DB_PASSWORD", ""),
			Name:     env.GetEnv("DB_NAME", ""),
		},
		Cache: Cache{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		},
		Stripe: Stripe{
			SecretKey:     env.GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceIDs: map[string]string{
				models.SubscriptionPlanPro:   env.GetEnv("STRIPE_PRICE_PRO", ""),
				models.SubscriptionPlanUltra: env.GetEnv("STRIPE_PRICE_ULTRA", ""),
			},
			OrderingFence: env.GetBool("WEBHOOK_ORDERING_FENCE", false),
		},
		Proxy: Proxy{
			Header:  strings.TrimSpace(env.GetEnv("PROXY_HEADER", "")),
			Trusted: splitList(env.GetEnv("TRUSTED_PROXIES", "")),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate reports every missing required value in one error.
func (c Config) Validate() error {
	var errs []error
	require := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, key))
		}
	}

	require("STRIPE_SECRET_KEY", c.Stripe.SecretKey)
	require("STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret)
	require("PUBLIC_SITE_URL", c.PublicSiteURL)
	require("AUTH_JWT_SECRET", c.AuthJWTSecret)

	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		require("DB_HOST", c.Database.Host)
		require("DB_USER", c.Database.User)
		require("DB_NAME", c.Database.Name)
	}

	if c.Proxy.Header != "" && len(c.Proxy.Trusted) == 0 {
		errs = append(errs, fmt.Errorf("%w: TRUSTED_PROXIES (PROXY_HEADER is set)", ErrMissing))
	}
	for _, p := range c.Proxy.Trusted {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p))
		}
	}

	return errors.Join(errs...)
}

func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}
