// Command server runs the concierge admin API.
//
// @title                       Concierge Admin API
// @version                     1.0
// @description                 Back-office API for luxury concierge inventory, vendors and admin users.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aerolux/concierge-admin/internal/api"
	"github.com/aerolux/concierge-admin/internal/core/service"
	"github.com/aerolux/concierge-admin/internal/infrastructure/broadcast"
	mongodb "github.com/aerolux/concierge-admin/internal/infrastructure/db/mongo"
	redisdb "github.com/aerolux/concierge-admin/internal/infrastructure/db/redis"
	"github.com/aerolux/concierge-admin/internal/infrastructure/http/handlers"
	"github.com/aerolux/concierge-admin/internal/infrastructure/queue"
	"github.com/aerolux/concierge-admin/internal/infrastructure/storage"
	"github.com/aerolux/concierge-admin/internal/pkg/config"
	"github.com/aerolux/concierge-admin/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	hubBuffer       = 64
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "concierge-admin",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	userRepo := mongodb.NewUserRepository(db)
	vendorRepo := mongodb.NewVendorRepository(db)
	inventoryRepo := mongodb.NewInventoryRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	if err := mongodb.EnsureIndexes(ctx, userRepo, vendorRepo, inventoryRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	sequences := redisdb.NewSequenceAllocator(rdb, inventoryRepo)

	// --- Background delivery ---
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, redisdb.NewNotificationStream(rdb, cfg.Notify.Stream), log).
		WithSendTimeout(cfg.Notify.SendTimeout)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	hub := broadcast.NewHub(hubBuffer, log)

	// --- Services ---
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := service.NewAuthService(userRepo, vendorRepo, tokens, auditRepo, log)
	vendorService := service.NewVendorService(vendorRepo, tokens, dispatcher, auditRepo, log)
	inventoryService := service.NewInventoryService(inventoryRepo, sequences, hub, auditRepo, log)

	checks := map[string]handlers.Check{
		"mongo": handlers.MongoCheck(db),
		"redis": handlers.RedisCheck(rdb),
	}

	if cfg.StorageEnabled() {
		store, err := storage.NewStore(storage.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			PublicURL: cfg.MinIO.PublicURL,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid object storage configuration")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare image bucket")
		}
		inventoryService.WithImageStore(store)
		checks["storage"] = store.Ping
		log.Info().Str("endpoint", cfg.MinIO.Endpoint).Str("bucket", cfg.MinIO.Bucket).Msg("image uploads enabled")
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, image uploads disabled")
	}

	if cfg.Bootstrap.Password != "" {
		if err := authService.EnsureSuperAdmin(ctx, cfg.Bootstrap.Email, cfg.Bootstrap.Password, cfg.Bootstrap.Name); err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap super admin")
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Config:    cfg,
		Tokens:    tokens,
		Auth:      authService,
		Vendors:   vendorService,
		Inventory: inventoryService,
		Hub:       hub,
		Checks:    checks,
		Logger:    log,
	})
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
}
