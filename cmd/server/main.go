package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/storefront-service/config"
	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/server"
	"github.com/fekuna/storefront-service/pkg/archive"
	"github.com/fekuna/storefront-service/pkg/broker"
	"github.com/fekuna/storefront-service/pkg/cache"
	"github.com/fekuna/storefront-service/pkg/database/postgres"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/fekuna/storefront-service/pkg/search"

	catH "github.com/fekuna/storefront-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/storefront-service/internal/category/repository"
	catUCPkg "github.com/fekuna/storefront-service/internal/category/usecase"

	prodPkg "github.com/fekuna/storefront-service/internal/product"
	prodH "github.com/fekuna/storefront-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/storefront-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/storefront-service/internal/product/usecase"

	invH "github.com/fekuna/storefront-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/storefront-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/storefront-service/internal/inventory/usecase"

	discH "github.com/fekuna/storefront-service/internal/discount/handler"
	discRepoPkg "github.com/fekuna/storefront-service/internal/discount/repository"
	discUCPkg "github.com/fekuna/storefront-service/internal/discount/usecase"

	userH "github.com/fekuna/storefront-service/internal/user/handler"
	userRepoPkg "github.com/fekuna/storefront-service/internal/user/repository"
	userUCPkg "github.com/fekuna/storefront-service/internal/user/usecase"

	orderPkg "github.com/fekuna/storefront-service/internal/order"
	orderH "github.com/fekuna/storefront-service/internal/order/handler"
	orderPub "github.com/fekuna/storefront-service/internal/order/publisher"
	orderRepoPkg "github.com/fekuna/storefront-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/storefront-service/internal/order/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if err := postgres.Migrate(context.Background(), db, cfg.Server.MigrationsDir, appLogger); err != nil {
		appLogger.Fatal("Could not apply migrations", zap.Error(err))
	}

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	discRepo := discRepoPkg.NewPGRepository(db)
	userRepo := userRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	// 5. Optional backends. Each one is only handed to the use cases when it
	// connected, so the interfaces stay truly nil otherwise.
	var listCache prodPkg.ListCache
	rateLimit := server.OrderRateLimit{Limit: cfg.Order.RateLimit, Window: cfg.Order.RateLimitWindow}
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis (listing cache and rate limiting disabled)", zap.Error(err))
	} else {
		defer redisClient.Close()
		listCache = redisClient
		rateLimit.Limiter = redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	var searchIndex prodPkg.SearchIndex
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to SQL)", zap.Error(err))
	} else {
		searchIndex = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	var events orderPkg.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer producer.Close()
		events = orderPub.NewKafkaPublisher(producer)
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var orderArchive orderPkg.Archive
	if cfg.Mongo.URI != "" {
		mongoClient, mongoDB, err := archive.Connect(context.Background(), &archive.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			appLogger.Warn("Could not connect to MongoDB (order archive disabled)", zap.Error(err))
		} else {
			defer mongoClient.Disconnect(context.Background())
			orderArchive = orderRepoPkg.NewMongoArchive(mongoDB)
			appLogger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		}
	}

	// 6. Initialize UseCases
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)

	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, listCache, searchIndex, cfg.Redis.CacheTTL, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, prodUC, appLogger)
	discUC := discUCPkg.NewDiscountUseCase(discRepo, time.Now, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, tokens, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderUCPkg.Deps{
		Orders:       orderRepo,
		Products:     prodRepo,
		Discounts:    discUC,
		Listings:     prodUC,
		Events:       events,
		Archive:      orderArchive,
		Clock:        time.Now,
		NumberPrefix: cfg.Order.NumberPrefix,
		Logger:       appLogger,
	})

	// 7. Initialize Handlers
	router := server.NewRouter(server.Handlers{
		Users:      userH.NewUserHandler(userUC, appLogger),
		Categories: catH.NewCategoryHandler(catUC, appLogger),
		Products:   prodH.NewProductHandler(prodUC, appLogger),
		Inventory:  invH.NewInventoryHandler(invUC, appLogger),
		Discounts:  discH.NewDiscountHandler(discUC, appLogger),
		Orders:     orderH.NewOrderHandler(orderUC, appLogger),
	}, tokens, rateLimit, appLogger)

	// 8. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
