package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pharmakart/storefront/internal/banner"
	cartcache "github.com/pharmakart/storefront/internal/cart/cache"
	cartpoller "github.com/pharmakart/storefront/internal/cart/poller"
	cartrepo "github.com/pharmakart/storefront/internal/cart/repository"
	cartservice "github.com/pharmakart/storefront/internal/cart/service"
	catalogrepo "github.com/pharmakart/storefront/internal/catalog/repository"
	"github.com/pharmakart/storefront/internal/httpapi"
	"github.com/pharmakart/storefront/internal/order/adapter"
	"github.com/pharmakart/storefront/internal/order/engine"
	"github.com/pharmakart/storefront/internal/order/publisher"
	orderrepo "github.com/pharmakart/storefront/internal/order/repository"
	orderservice "github.com/pharmakart/storefront/internal/order/service"
	"github.com/pharmakart/storefront/pkg/config"
	"github.com/pharmakart/storefront/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// cart sessions (postgres)
	sessionCreds := &orderrepo.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.SessionMigrationsPath,
	}
	sessionRepo, err := orderrepo.NewRepository(sessionCreds)
	if err != nil {
		zapLogger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer sessionRepo.Close()

	if err := sessionRepo.RunMigrations(sessionCreds); err != nil {
		zapLogger.Fatal("session migrations failed", zap.Error(err))
	}

	// catalog (postgres)
	catalogCreds := &catalogrepo.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.CatalogMigrationsPath,
	}
	catalogRepo, err := catalogrepo.NewRepository(catalogCreds)
	if err != nil {
		zapLogger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(catalogCreds); err != nil {
		zapLogger.Fatal("catalog migrations failed", zap.Error(err))
	}

	// carts (mongo)
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB, &cartrepo.ConnOptions{
		ConnectTimeout: cfg.MongoConnTimeout,
		MaxPoolSize:    cfg.MongoMaxPoolSize,
		MinPoolSize:    cfg.MongoMinPoolSize,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			zapLogger.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()

	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	if ensurer, ok := cartRepository.(cartrepo.IndexEnsurer); ok {
		if err := ensurer.CreateIndexes(ctx); err != nil {
			zapLogger.Warn("failed to ensure cart indexes", zap.Error(err))
		}
	}

	// redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	cartCache := cartcache.NewRedisCache(redisClient)
	cartSvc := cartservice.NewCartService(cartRepository, cartCache, zapLogger)

	// external order engine
	engineClient := engine.NewClient(cfg.EngineBaseURL, cfg.EngineAPIKey, cfg.EngineTimeout)

	// order events
	producer := publisher.NewProducer(cfg.KafkaBrokerList()...)
	defer producer.Close()

	orderSvc := orderservice.NewOrderService(
		engineClient,
		sessionRepo,
		producer,
		adapter.NewCartReader(cartSvc),
		adapter.NewCatalogReader(catalogRepo),
		zapLogger,
	)

	bannerSvc := banner.NewService(catalogRepo, redisClient, zapLogger)

	// cart clearing consumer
	poller := cartpoller.NewPoller(cartRepository, cartCache, zapLogger, cfg.KafkaBrokerList()...)
	defer poller.Close()
	go poller.Run(ctx)

	router := httpapi.NewRouter(
		httpapi.RouterConfig{RequestTimeout: cfg.RequestTimeout},
		httpapi.NewOrderHandler(orderSvc, engineClient, cfg.RequestTimeout),
		httpapi.NewCartHandler(cartSvc, sessionRepo, cfg.RequestTimeout),
		httpapi.NewCatalogHandler(catalogRepo, cfg.RequestTimeout),
		httpapi.NewBannerHandler(bannerSvc, cfg.RequestTimeout),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}
