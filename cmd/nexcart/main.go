package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	handler "github.com/neomorfeo/nexcart/internal/adapter/http"
	"github.com/neomorfeo/nexcart/internal/adapter/kafka"
	"github.com/neomorfeo/nexcart/internal/adapter/otel"
	"github.com/neomorfeo/nexcart/internal/adapter/redis"
	riveradapter "github.com/neomorfeo/nexcart/internal/adapter/river"
	"github.com/neomorfeo/nexcart/internal/adapter/sqlite"
	"github.com/neomorfeo/nexcart/internal/app"
	"github.com/neomorfeo/nexcart/internal/config"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/logging"
	"github.com/neomorfeo/nexcart/internal/uow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := logging.New(cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logging.Sync(logger)

	ctx := context.Background()

	// --- Observability ---
	providers, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.Database.Path, cfg.Otel)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewStore(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	clock := shared.SystemClock{}
	repos := sqlite.NewRepositories(store, clock)
	tenants := otel.NewTracingTenantRepository(repos.Tenants)

	deps := riveradapter.Deps{
		Logger:        logger.Named("river"),
		SweepInterval: cfg.Jobs.CartSweepInterval,
		MaxWorkers:    cfg.Jobs.Workers,
	}
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer closeRedis(logger, rdb)
		deps.Deduper = redis.NewDeduper(rdb, cfg.Redis.DedupeTTL)
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka close", zap.Error(err))
			}
		}()
		deps.Forwarder = producer
	}

	// The sweep job needs the cart service, which needs the River sink.
	var janitor *app.CartJanitor
	deps.Sweeper = riveradapter.CartSweeperFunc(func(ctx context.Context, now time.Time) (int, error) {
		return janitor.SweepExpiredCarts(ctx, now)
	})

	client, err := riveradapter.Setup(ctx, db, deps)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}

	// --- Application ---
	sink := otel.NewTracingSink(riveradapter.NewSink(client))
	pipeline := uow.NewPipeline(otel.NewTracingStore(store), sink, clock, logger.Named("uow"), uow.NewMetrics(prometheus.DefaultRegisterer))

	carts := app.NewCartService(pipeline, repos.Carts, repos.Products, repos.Variants, clock)
	janitor = app.NewCartJanitor(tenants, carts)

	services := handler.Services{
		Tenants: app.NewTenantService(pipeline, tenants, clock),
		Catalog: app.NewCatalogService(pipeline, app.CatalogRepositories{
			Products:   repos.Products,
			Variants:   repos.Variants,
			Images:     repos.Images,
			Categories: repos.Categories,
			Brands:     repos.Brands,
		}, clock),
		Customers: app.NewCustomerService(pipeline, repos.Customers, clock),
		Carts:     carts,
		Orders: app.NewOrderService(pipeline, app.OrderRepositories{
			Orders:    repos.Orders,
			Carts:     repos.Carts,
			Customers: repos.Customers,
			Products:  repos.Products,
			Variants:  repos.Variants,
			Tenants:   tenants,
		}, clock),
		Wishlists: app.NewWishlistService(pipeline, repos.Wishlists, repos.Customers, repos.Products, repos.Variants, clock),
	}

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}

	// --- Adapters (in) ---
	router := handler.NewRouter(cfg.Otel.ServiceName, cfg.Otel.ServiceVersion, services, logger.Named("http"))
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Server ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("nexcart listening", zap.String("addr", srv.Addr), zap.String("docs", "http://localhost:"+cfg.Server.Port+"/docs"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	var runErr error
	select {
	case <-done:
		logger.Info("shutting down")
	case err := <-serverErr:
		runErr = fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := client.Stop(shutdownCtx); err != nil {
		logger.Error("river shutdown", zap.Error(err))
	}

	logger.Info("stopped")
	return runErr
}

func closeRedis(logger *zap.Logger, rdb *goredis.Client) {
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}
}
