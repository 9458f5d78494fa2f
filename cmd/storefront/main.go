package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshmart/storefront/internal/account"
	"github.com/freshmart/storefront/internal/admin"
	"github.com/freshmart/storefront/internal/app"
	"github.com/freshmart/storefront/internal/auth"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/checkout"
	"github.com/freshmart/storefront/internal/guest"
	"github.com/freshmart/storefront/internal/observability"
	"github.com/freshmart/storefront/internal/platform/cache"
	"github.com/freshmart/storefront/internal/platform/db"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
	"github.com/freshmart/storefront/internal/synced"
	"github.com/freshmart/storefront/internal/wishlist"
	"github.com/freshmart/storefront/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "web")

	shutdownTracing, err := observability.SetupTracing(observability.TracingConfig{Stdout: cfg.TraceStdout})
	if err != nil {
		logger.Error("setup tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var (
		pool        *pgxpool.Pool
		idempotency shared.Idempotency = shared.NewRedisIdempotency(redisClient, cfg.IdempotencyRetention)
		auditor     shared.Auditor     = shared.NewSlogAuditor(logger)
	)
	if cfg.HasPostgres() {
		pool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("migrate postgres", slog.Any("error", err))
			os.Exit(1)
		}
		idempotency = shared.NewIdempotencyStore(pool)
		auditor = shared.NewAuditLogger(pool)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer jobClient.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	backend := storeapi.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	sessionManager := shared.NewSessionManager(redisClient, "freshmart_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	guests := guest.NewFactory(redisClient, cfg.GuestTTL)
	guestKV := func(sessionID string) synced.KV { return guests.For(sessionID) }
	metrics := observability.NewMetrics()

	catalogService := catalog.NewService(backend)
	cartHandler := cart.NewHandler(logger, backend, catalogService, guestKV)
	checkoutService := checkout.NewService(backend, idempotency, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     auth.NewHandler(logger, auth.NewService(backend), sessionManager, csrfManager),
		CatalogHandler:  catalog.NewHandler(logger, catalogService),
		CartHandler:     cartHandler,
		WishlistHandler: wishlist.NewHandler(logger, backend, catalogService, guestKV),
		AdminHandler:    admin.NewHandler(logger, admin.NewManager(backend, auditor, logger)),
		AccountHandler:  account.NewHandler(logger, account.NewService(backend)),
		CheckoutHandler: checkout.NewHandler(logger, checkoutService, cartHandler),
		JobHandler:      jobs.NewHandler(inspector, logger),
		Backend:         backend,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
