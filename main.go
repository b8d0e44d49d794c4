package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"api_pos/api"
	"api_pos/internal/auth"
	"api_pos/internal/config"
	"api_pos/internal/inventory"
	"api_pos/internal/invoice"
	"api_pos/internal/platform/observability"
	"api_pos/internal/sales"
	"api_pos/internal/storage/memory"
	"api_pos/internal/storage/mysql"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// backend is what both storage drivers provide.
type backend interface {
	sales.Storage
	inventory.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		logger.Error("failed to setup tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	salesService := sales.NewService(store, logger, sales.WithTimeout(cfg.StorageTimeout))
	inventoryService := inventory.NewService(store, logger, cfg.StorageTimeout)
	invoiceService := invoice.NewService(salesService, openCache(ctx, cfg, logger), logger)

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, api.Dependencies{
		Sales:     salesService,
		Inventory: inventoryService,
		Invoices:  invoiceService,
		Tokens:    auth.NewTokens(cfg.JWTSecret),
		Logger:    logger,
	})

	logger.Info("api_pos listening", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("error trying to start server", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		return memory.NewStore(), func() {}, nil
	}
	store, err := mysql.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// openCache returns nil when redis is not configured or unreachable.
func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) invoice.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, invoice caching disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return invoice.NewRedisCache(client, cacheNamespace(cfg), cfg.InvoiceCacheTTL)
}

// cacheNamespace scopes cached invoices to the ledger. The memory ledger
// restarts its sale ids with every process, so each process gets its own.
func cacheNamespace(cfg *config.Config) string {
	if cfg.StorageDriver == config.DriverMemory {
		return config.DriverMemory + "-" + uuid.NewString()
	}
	return config.DriverMySQL
}
