// Package app wires configuration, storage, domain services, and the HTTP
// server into a runnable storefront.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/data"
	"github.com/huandz/freshmart/internal/chat"
	"github.com/huandz/freshmart/internal/domain/cart"
	"github.com/huandz/freshmart/internal/domain/checkout"
	"github.com/huandz/freshmart/internal/domain/compare"
	"github.com/huandz/freshmart/internal/domain/order"
	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/domain/promo"
	"github.com/huandz/freshmart/internal/domain/wishlist"
	"github.com/huandz/freshmart/internal/handler"
	"github.com/huandz/freshmart/internal/storage/kv"
	"github.com/huandz/freshmart/internal/storage/memory"
	"github.com/huandz/freshmart/internal/storage/postgres"
	rediskv "github.com/huandz/freshmart/internal/storage/redis"
	"github.com/huandz/freshmart/pkg/health"
	"github.com/huandz/freshmart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.StorageBackend))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Storage backend selection. Postgres additionally serves the product
	// catalog and discount codes; the other backends use the embedded
	// catalog and built-in codes.
	var (
		store    kv.Store
		products product.Repository
		promos   promo.Repository
	)
	switch cfg.StorageBackend {
	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		store = postgres.NewKV(pool)
		products = postgres.NewProductRepository(pool)
		promos = postgres.NewPromoRepository(pool)

	case BackendRedis:
		rdb, err := rediskv.Open(ctx, cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = rdb.Close() }()

		healthSvc.AddReadinessCheck("redis", 5*time.Second, rdb.Ping)
		store = rdb

	case BackendFile:
		fileStore, err := kv.NewFile(cfg.DataDir)
		if err != nil {
			return errors.Wrap(err, "open state dir")
		}
		store = fileStore

	default:
		store = kv.NewMemory()
	}

	if products == nil {
		catalog, err := data.Catalog()
		if err != nil {
			return errors.Wrap(err, "load embedded catalog")
		}
		products = memory.NewProductRepository(catalog)
		promos = memory.NewPromoRepository(promo.DefaultRules())
	}

	healthSvc.Start(ctx, 10*time.Second)

	// Store services hydrate from the backend at construction.
	cartSvc, err := cart.NewService(ctx, store, lg)
	if err != nil {
		return errors.Wrap(err, "hydrate cart")
	}
	wishlistSvc, err := wishlist.NewService(ctx, store, lg)
	if err != nil {
		return errors.Wrap(err, "hydrate wishlist")
	}
	compareSvc, err := compare.NewService(ctx, store, lg)
	if err != nil {
		return errors.Wrap(err, "hydrate compare list")
	}
	orderSvc, err := order.NewService(ctx, store, lg, order.Config{
		SeedBalance: decimal.NewFromInt(cfg.SeedBalance),
	})
	if err != nil {
		return errors.Wrap(err, "hydrate orders")
	}

	checkoutSvc := checkout.NewService(cartSvc, orderSvc, promo.NewRepoValidator(promos))

	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		products,
		cartSvc,
		wishlistSvc,
		compareSvc,
		orderSvc,
		checkoutSvc,
		chat.NewResponder(cfg.ChatDelay),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	healthSvc.SetReady(true)

	metricsMW, err := httpmiddleware.Metrics(m)
	if err != nil {
		return errors.Wrap(err, "create metrics middleware")
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("freshmart-api", m),
			metricsMW,
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
