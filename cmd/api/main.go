package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pixfunnel-backend/api/routes"
	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/auth"
	"github.com/angelmondragon/pixfunnel-backend/internal/catalog"
	"github.com/angelmondragon/pixfunnel-backend/internal/checkout"
	"github.com/angelmondragon/pixfunnel-backend/internal/funnel"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/internal/sales"
	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
	"github.com/angelmondragon/pixfunnel-backend/pkg/db"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/metrics"
	"github.com/angelmondragon/pixfunnel-backend/pkg/migrate"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pixgateway"
	"github.com/angelmondragon/pixfunnel-backend/pkg/redis"
	"github.com/angelmondragon/pixfunnel-backend/pkg/viacep"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured; rate limits, idempotency and submit locks are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	policy, err := pricing.PolicyFromConfig(cfg.Checkout)
	if err != nil {
		logg.Error(ctx, "invalid checkout policy", err)
		os.Exit(1)
	}

	cepClient := viacep.NewClient(
		viacep.WithBaseURL(cfg.ViaCEP.BaseURL),
		viacep.WithHTTPClient(&http.Client{Timeout: cfg.ViaCEP.Timeout}),
		viacep.WithRateLimit(cfg.ViaCEP.RequestsPerSecond),
	)
	addressOpts := []address.ServiceOption{address.WithMetrics(checkoutMetrics), address.WithLogger(logg)}
	catalogOpts := []catalog.ServiceOption{catalog.WithLogger(logg)}
	if redisClient != nil {
		addressOpts = append(addressOpts, address.WithCache(redisClient, cfg.ViaCEP.CacheTTL))
		catalogOpts = append(catalogOpts, catalog.WithOfferCache(redisClient, cfg.Catalog.OfferCacheTTL))
	}
	addressService, err := address.NewService(cepClient, addressOpts...)
	requireService(ctx, logg, "address", err)

	gateway, err := pixgateway.NewClient(
		cfg.PixGateway.URL,
		pixgateway.WithHTTPClient(&http.Client{Timeout: cfg.PixGateway.Timeout}),
		pixgateway.WithAPIKey(cfg.PixGateway.APIKey),
	)
	requireService(ctx, logg, "pix gateway", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), catalogOpts...)
	requireService(ctx, logg, "catalog", err)

	salesService, err := sales.NewService(sales.NewRepository(dbClient.DB()), dbClient)
	requireService(ctx, logg, "sales", err)

	authService, err := auth.NewService(cfg.Admin, cfg.JWT)
	requireService(ctx, logg, "auth", err)

	addressDefaults := address.DefaultOptions()
	addressDefaults.RelockOnContactCleared = cfg.Checkout.RelockOnClear
	if cfg.Checkout.DefaultCountry != "" {
		addressDefaults.Country = cfg.Checkout.DefaultCountry
	}

	funnelDeps := funnel.Deps{
		Policy:  policy,
		Lookup:  addressService,
		Charger: gateway,
		Address: addressDefaults,
		Checkout: checkout.Options{
			FallbackTaxID: cfg.Checkout.FallbackTaxID,
			Description:   cfg.Checkout.ChargeDescription,
		},
		Metrics: checkoutMetrics,
		Logger:  logg,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"mode": policy.Mode,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			authService,
			catalogService,
			salesService,
			addressService,
			funnelDeps,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
