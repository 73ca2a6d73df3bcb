package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/licitaflash/licitaflash/app/controllers"
	"github.com/licitaflash/licitaflash/app/repository"
	apiv1 "github.com/licitaflash/licitaflash/internal/api/v1"
	"github.com/licitaflash/licitaflash/internal/pkg/billing"
	"github.com/licitaflash/licitaflash/internal/pkg/cache"
	"github.com/licitaflash/licitaflash/internal/pkg/config"
	"github.com/licitaflash/licitaflash/internal/pkg/database"
	"github.com/licitaflash/licitaflash/internal/pkg/env"
	"github.com/licitaflash/licitaflash/internal/pkg/middleware"
	"github.com/licitaflash/licitaflash/internal/pkg/ratelimit"
	"github.com/licitaflash/licitaflash/internal/pkg/router"
	"github.com/licitaflash/licitaflash/internal/pkg/usage"
)

const (
	// 1 MiB covers every JSON body and the largest provider webhook.
	bodyLimit = 1 << 20
	specFile  = "public/docs/v1/openapi.yml"
)

func main() {
	app, cfg := NewApplication()
	err := app.Listen(cfg.ListenAddr())
	log.Fatal(err)
}

func NewApplication() (*fiber.App, config.Config) {
	env.SetupEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := database.SetupDatabase(cfg.Database, cfg.IsDev())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	redisClient := cache.SetupCache(cfg.Cache)

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/licitaflash to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + specFile); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		log.Fatal("Could not find project root directory")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := apiv1.LoadSpec(ctx, basePath+specFile); err != nil {
		log.Fatalf("api docs: %v", err)
	}

	// init fiber app
	// client addresses come from the proxy header only when a trusted peer sent it
	app := fiber.New(ratelimit.TrustProxies(fiber.Config{
		BodyLimit: bodyLimit,
	}, cfg.Proxy))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber runtime stats, local only
	if cfg.IsDev() {
		app.Get("/monitor", monitor.New())
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + specFile,
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	repos := repository.NewFactory(db)
	meter := usage.NewMeter(redisClient)

	reconciler := billing.NewServiceFromDB(db,
		billing.WithEventLog(billing.NewRedisEventLog(redisClient)),
		billing.WithOrderingFence(cfg.Stripe.OrderingFence),
	)
	checkout := billing.NewCheckoutCreator(billing.CheckoutConfig{
		SecretKey: cfg.Stripe.SecretKey,
		SiteURL:   cfg.PublicSiteURL,
		PriceIDs:  cfg.Stripe.PriceIDs,
	})

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Tenders:        controllers.NewTenderController(repos.GetTenderRepository(), repos.GetDraftRepository(), meter),
		Account:        controllers.NewAccountController(meter),
		Billing:        controllers.NewBillingController(billing.NewVerifier(cfg.Stripe.WebhookSecret), reconciler, checkout),
		Waitlist:       controllers.NewWaitlistController(repos.GetWaitlistRepository()),
		Drafts:         controllers.NewDraftController(repos.GetDraftRepository()),
		RequireAuth:    middleware.RequireAuth(middleware.NewTokenVerifier(cfg.AuthJWTSecret), repos.GetSubscriberRepository()),
		LimiterStorage: ratelimit.NewStorage(redisClient),
	})

	return app, cfg
}
