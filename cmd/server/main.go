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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/product-composite-service/internal/cache"
	"github.com/actuallystonmai/product-composite-service/internal/config"
	"github.com/actuallystonmai/product-composite-service/internal/handler"
	"github.com/actuallystonmai/product-composite-service/internal/logger"
	"github.com/actuallystonmai/product-composite-service/internal/observability"
	"github.com/actuallystonmai/product-composite-service/internal/repository"
	"github.com/actuallystonmai/product-composite-service/internal/router"
	"github.com/actuallystonmai/product-composite-service/internal/service"
	"github.com/actuallystonmai/product-composite-service/internal/serviceaddr"
	"github.com/actuallystonmai/product-composite-service/internal/upstream"
	"github.com/actuallystonmai/product-composite-service/migrations"
	"github.com/actuallystonmai/product-composite-service/seeds"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "product-composite",
		Environment: cfg.LogMode,
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}()

	// ------------ Upstream gateway ---------------
	var gateway upstream.Gateway
	switch cfg.GatewayMode {
	case config.GatewayPostgres:
		pool, err := openPostgres(ctx, cfg, log)
		if err != nil {
			log.Fatal("postgres gateway unavailable", "error", err)
		}
		defer pool.Close()

		// for migrate-down using CLI command
		if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
			if _, err := pool.Exec(ctx, migrations.Down); err != nil {
				log.Fatal("failed to migrate down", "error", err)
			}
			log.Info("migrations dropped")
			return
		}
		if err := prepareDatabase(ctx, pool, log); err != nil {
			log.Fatal("failed to prepare database", "error", err)
		}
		gateway = repository.New(pool)

	default:
		client, err := upstream.NewClient(upstream.Options{
			ProductURL:        cfg.ProductServiceURL,
			RecommendationURL: cfg.RecommendationServiceURL,
			ReviewURL:         cfg.ReviewServiceURL,
			Timeout:           cfg.UpstreamTimeout,
			MaxRetries:        cfg.UpstreamMaxRetries,
			Logger:            log,
		})
		if err != nil {
			log.Fatal("failed to create upstream client", "error", err)
		}
		gateway = client
	}

	// ------------ Redis cache ---------------
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to parse redis url", "error", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		cached := cache.NewGateway(rdb, gateway, cfg.CacheTTL, log)
		if err := cached.Ping(ctx); err != nil {
			log.Warn("redis not reachable, cache will fall through", "error", err)
		} else {
			log.Info("connected to redis")
		}
		gateway = cached
	}

	// ---------------- Server --------------------
	address := serviceaddr.New(cfg.ServiceAddress, cfg.Port)
	svc := service.NewService(gateway, address, log, service.Options{
		DegradeOnPartialFailure: cfg.DegradeOnPartialFailure(),
		BatchConcurrency:        cfg.BatchConcurrency,
	})
	h := handler.NewHandler(svc, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(h, log, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server running",
			"addr", cfg.Addr(),
			"gateway", cfg.GatewayMode,
			"failure_policy", cfg.UpstreamFailurePolicy,
			"service_address", address.Address(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := waitForDB(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("connected to PostgreSQL")
	return pool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info("waiting for database...", "attempt", i+1, "max", 30)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func prepareDatabase(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	if _, err := pool.Exec(ctx, migrations.Up); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	log.Info("migrations applied successfully")

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("check products count: %w", err)
	}
	if count > 0 {
		log.Info("database already seeded, skipping", "products", count)
		return nil
	}
	return seeds.Setup(ctx, pool, log)
}
