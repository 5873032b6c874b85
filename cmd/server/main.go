package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/application/resolve"
	syncapp "github.com/qiyascc/trendsync/internal/application/sync"
	"github.com/qiyascc/trendsync/internal/domain/marketplace"
	"github.com/qiyascc/trendsync/internal/infrastructure/cache"
	"github.com/qiyascc/trendsync/internal/infrastructure/config"
	"github.com/qiyascc/trendsync/internal/infrastructure/logger"
	"github.com/qiyascc/trendsync/internal/infrastructure/persistence"
	"github.com/qiyascc/trendsync/internal/infrastructure/semantic"
	"github.com/qiyascc/trendsync/internal/infrastructure/trendyol"
	"github.com/qiyascc/trendsync/internal/interfaces/http/handler"
	"github.com/qiyascc/trendsync/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting trendsync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env))

	db, err := persistence.OpenPostgres(cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := persistence.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	productRepo := persistence.NewGormProductRepository(db)
	ticketRepo := persistence.NewGormTicketRepository(db)

	client, err := trendyol.NewClient(trendyol.Config{
		APIKey:          cfg.Trendyol.APIKey,
		APISecret:       cfg.Trendyol.APISecret,
		SellerID:        cfg.Trendyol.SellerID,
		BaseURL:         cfg.Trendyol.BaseURL,
		TimeoutSeconds:  cfg.Trendyol.TimeoutSeconds,
		FallbackBrandID: cfg.Trendyol.FallbackBrandID,
	}, log.Named("trendyol"))
	if err != nil {
		log.Fatal("Failed to build marketplace client", zap.Error(err))
	}

	taxonomyCache := cache.NewTaxonomyCache(client, log.Named("taxonomy"))
	schemaCache := cache.NewAttributeSchemaCache(client, log.Named("schema"))

	guard := buildGuard(cfg, log)

	var embedder marketplace.Embedder
	if cfg.Semantic.APIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ge, err := semantic.NewGeminiEmbedder(ctx, cfg.Semantic.APIKey, cfg.Semantic.Model, log.Named("semantic"))
		cancel()
		if err != nil {
			log.Warn("Semantic matching disabled: embedder init failed", zap.Error(err))
		} else {
			embedder = ge
		}
	}

	categoryResolver := resolve.NewCategoryResolver(taxonomyCache, embedder, resolve.StaticSynonyms{}, log.Named("resolve"))
	attributeResolver := resolve.NewAttributeResolver(schemaCache, log.Named("resolve"))

	builder := marketplace.NewPayloadBuilder(
		decimal.NewFromFloat(cfg.Submission.ListPriceMargin),
		cfg.Submission.DefaultVATRate,
		cfg.Submission.DefaultCurrency,
	)

	machine := syncapp.NewSubmissionStateMachine(client, ticketRepo, guard, syncapp.PollConfig{
		InitialInterval: cfg.Submission.PollInitial,
		MaxInterval:     cfg.Submission.PollMaxInterval,
		MaxElapsed:      cfg.Submission.PollMaxElapsed,
		MaxPolls:        cfg.Submission.PollMaxAttempts,
	}, log.Named("submission"))

	service := syncapp.NewProductSyncService(
		productRepo,
		categoryResolver,
		attributeResolver,
		schemaCache,
		client,
		builder,
		machine,
		log.Named("sync"),
	)

	syncHandler := handler.NewSyncHandler(service, productRepo, taxonomyCache, schemaCache, log.Named("http"))
	engine := router.New(syncHandler, log.Named("http"), cfg.App.Env)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: engine,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// buildGuard wires the redis submission guard, falling back to the
// in-process guard when redis is not configured or unreachable.
func buildGuard(cfg *config.Config, log *zap.Logger) marketplace.SubmissionGuard {
	if cfg.Redis.Host == "" {
		log.Info("Redis not configured, using in-memory submission guard")
		return cache.NewInMemorySubmissionGuard()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	guard, err := cache.NewRedisSubmissionGuard(client, cfg.Submission.GuardTTL)
	if err != nil {
		log.Warn("Redis unreachable, using in-memory submission guard", zap.Error(err))
		return cache.NewInMemorySubmissionGuard()
	}
	return guard
}
