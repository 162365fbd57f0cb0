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
	"go.uber.org/multierr"

	"github.com/rkdoors/storefront-backend/api/routes"
	"github.com/rkdoors/storefront-backend/internal/auth"
	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/rkdoors/storefront-backend/internal/checkout"
	"github.com/rkdoors/storefront-backend/internal/estimates"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/internal/users"
	"github.com/rkdoors/storefront-backend/pkg/auth/session"
	"github.com/rkdoors/storefront-backend/pkg/catalogapi"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/db"
	"github.com/rkdoors/storefront-backend/pkg/dynamo"
	"github.com/rkdoors/storefront-backend/pkg/instance"
	"github.com/rkdoors/storefront-backend/pkg/kv"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/metrics"
	"github.com/rkdoors/storefront-backend/pkg/migrate"
	"github.com/rkdoors/storefront-backend/pkg/pubsub"
	"github.com/rkdoors/storefront-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.Open(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderStoreMetrics(registry)
	estimateMetrics := metrics.NewEstimateMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	kvStore, err := kv.NewRedisStore(redisClient)
	requireResource(ctx, logg, "key-value store", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		IdentityCache:  kvStore,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		IdentityConfig: cfg.Identity,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "admin register service", err)

	catalogClient := catalogapi.NewClient(
		catalogapi.WithBaseURL(cfg.Catalog.BaseURL),
		catalogapi.WithTimeout(cfg.Catalog.Timeout),
	)
	catalogStore, err := catalog.NewStore(catalogClient, logg)
	requireResource(ctx, logg, "catalog store", err)
	catalogStore.Start(ctx)

	orderStore, err := newOrderStore(ctx, cfg, dbClient, logg)
	requireResource(ctx, logg, "order store", err)

	feed, err := orders.NewRedisFeed(redisClient, cfg.Orders.FeedChannel)
	requireResource(ctx, logg, "order feed", err)

	var events orders.EventPublisher
	var pubsubClient *pubsub.Client
	if cfg.PubSub.Enabled() {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		topic := pubsubClient.OrdersPublisher()
		if topic == nil {
			requireResource(ctx, logg, "order event publisher", errors.New("orders topic unavailable"))
		}
		events, err = orders.NewPubSubPublisher(topic)
		requireResource(ctx, logg, "order event publisher", err)
	}

	orderManager, err := orders.NewManager(orders.ManagerParams{
		Store:        orderStore,
		Feed:         feed,
		Events:       events,
		Metrics:      orderMetrics,
		Logger:       logg,
		WriteTimeout: cfg.Orders.WriteTimeout,
	})
	requireResource(ctx, logg, "order manager", err)
	orderManager.Start(ctx)
	go watchOrderFeed(ctx, logg, orderManager)

	cartRegistry := cart.NewRegistry()
	cartService, err := cart.NewService(cart.ServiceParams{Catalog: catalogStore, Registry: cartRegistry, Logger: logg})
	requireResource(ctx, logg, "cart service", err)
	go cartRegistry.RunSweeper(ctx, cfg.Cart.SweepInterval, cfg.Cart.IdleTTL, logg)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Orders:  orderManager,
		Carts:   cartService,
		Catalog: catalogStore,
		Logger:  logg,
	})
	requireResource(ctx, logg, "checkout service", err)

	numberer, err := estimates.NewNumberer(kvStore, cfg.Estimates.CounterKey, estimateMetrics, logg)
	requireResource(ctx, logg, "estimate numberer", err)

	estimateService, err := estimates.NewService(estimates.ServiceParams{
		Carts:    cartService,
		Numberer: numberer,
		Metrics:  estimateMetrics,
		Logger:   logg,
	})
	requireResource(ctx, logg, "estimate service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"instance":       instance.GetID(),
		"orders_backend": cfg.Orders.Backend,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			httpMetrics,
			sessionManager,
			authService,
			adminRegisterService,
			catalogStore,
			cartService,
			checkoutService,
			orderManager,
			estimateService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	shutdownErr = multierr.Append(shutdownErr, orderManager.Close())
	if pubsubClient != nil {
		shutdownErr = multierr.Append(shutdownErr, pubsubClient.Close())
	}
	shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	shutdownErr = multierr.Append(shutdownErr, dbClient.Close())
	if shutdownErr != nil {
		logg.Error(serverCtx, "shutdown completed with errors", shutdownErr)
		exitCode = 1
	} else {
		logg.Info(serverCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

// newOrderStore picks the order backend named by RKDOORS_ORDERS_BACKEND.
func newOrderStore(ctx context.Context, cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (orders.Store, error) {
	if cfg.Orders.Backend != config.OrdersBackendDynamo {
		return orders.NewRepository(dbClient.DB()), nil
	}
	client, err := dynamo.New(ctx, cfg.DynamoDB, logg)
	if err != nil {
		return nil, err
	}
	return orders.NewDynamoRepository(client.API(), client.OrdersTable())
}

// watchOrderFeed logs subscription failures until shutdown. Recovery is an
// explicit admin resync.
func watchOrderFeed(ctx context.Context, logg *logger.Logger, manager *orders.Manager) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-manager.Errors():
			logg.Warn(logg.WithFields(ctx, map[string]any{
				"error":  err.Error(),
				"mirror": string(manager.Status().State),
			}), "orders.mirror_degraded")
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to bootstrap "+name, err)
	os.Exit(1)
}
