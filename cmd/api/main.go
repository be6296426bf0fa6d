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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	applog "storefront/internal/logger"
	"storefront/internal/payment"
	collectionrepo "storefront/internal/repository/collection"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
	sessionrepo "storefront/internal/repository/session"
	anonymoussvc "storefront/internal/service/anonymous"
	checkoutsvc "storefront/internal/service/checkout"
	collectionsvc "storefront/internal/service/collection"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	sessionsvc "storefront/internal/service/session"
)

const (
	sessionIdle   = time.Hour
	sweepInterval = time.Minute
	purgeInterval = time.Hour
)

func main() {
	cfg := config.FromEnv()
	logger, err := applog.New(cfg.AppEnv, cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("api")

	if cfg.AppEnv != "development" && cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var rdb *redis.Client
	if cfg.SessionStore == "redis" || cfg.CatalogCacheTTL > 0 {
		rdb, err = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		switch {
		case err == nil:
			defer rdb.Close()
		case cfg.SessionStore == "redis":
			logger.Fatal("connect to redis", zap.Error(err))
		default:
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		}
	}

	slots, err := sessionStore(cfg, dbpool, rdb, logger)
	if err != nil {
		logger.Fatal("session store", zap.Error(err))
	}

	var products productrepo.Repository = productrepo.NewPostgres(dbpool, logger)
	if rdb != nil && cfg.CatalogCacheTTL > 0 {
		products = productrepo.NewCached(products, rdb, cfg.CatalogCacheTTL, logger)
	}
	collections := collectionrepo.NewPostgres(dbpool, logger)

	catalog := productsvc.New(products, logger)
	sessions := sessionsvc.New(slots, logger)
	orders := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), logger)
	gateway := payment.New(payment.Config{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		BaseURL:   cfg.RazorpayBaseURL,
		Currency:  cfg.Checkout.Currency,
	}, logger)
	checkout := checkoutsvc.New(sessions, gateway, orders, cfg.Checkout, logger)
	tokens, err := anonymoussvc.New(cfg.SessionSecret, cfg.SessionTTL, logger)
	if err != nil {
		logger.Fatal("session tokens", zap.Error(err))
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Tokens:      tokens,
		Sessions:    sessions,
		Checkout:    checkout,
		Catalog:     catalog,
		Collections: collectionsvc.New(collections, products, logger),
		Reviews:     reviewsvc.New(reviewrepo.NewPostgres(dbpool, logger), products, logger),
		Orders:      orders,
		Payments:    gateway,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	go sweep(ctx, sweepInterval, func() {
		if n := sessions.Sweep(sessionIdle); n > 0 {
			logger.Debug("idle sessions dropped", zap.Int("count", n))
		}
		if n := checkout.Sweep(); n > 0 {
			logger.Debug("expired checkout attempts dropped", zap.Int("count", n))
		}
	})
	if cfg.SessionStore == "postgres" {
		go sweep(ctx, purgeInterval, func() {
			n, err := sessionrepo.PurgeExpired(ctx, dbpool)
			if err != nil {
				logger.Warn("purge expired sessions", zap.Error(err))
				return
			}
			logger.Info("expired sessions purged", zap.Int64("count", n))
		})
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func sessionStore(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) (sessionrepo.Repository, error) {
	switch cfg.SessionStore {
	case "redis":
		return sessionrepo.NewRedis(rdb, cfg.SessionTTL, logger), nil
	case "postgres":
		return sessionrepo.NewPostgres(pool, cfg.SessionTTL, logger), nil
	case "memory":
		logger.Warn("session snapshots kept in memory only")
		return sessionrepo.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

func sweep(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
