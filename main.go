package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	aws_pkg "comart-backend/aws"
	"comart-backend/controllers"
	"comart-backend/database"
	"comart-backend/events"
	"comart-backend/kafka"
	"comart-backend/logger"
	"comart-backend/middleware"
	"comart-backend/repository"
	"comart-backend/routes"
	"comart-backend/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	log := zap.L()
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Disconnect(context.Background(), client); err != nil {
			log.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	// Redis is optional; without it the product cache is a no-op.
	var cache *services.ProductCache
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, product cache disabled", zap.Error(err))
		} else {
			cache = services.NewProductCache(rdb, log)
			defer rdb.Close() //nolint:errcheck
		}
	}

	userRepo := repository.NewMongoUserRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	categoryRepo := repository.NewMongoCategoryRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	ratingRepo := repository.NewMongoRatingRepository(db)

	var awsCfg *sdkaws.Config
	if loaded, err := aws_pkg.LoadConfig(ctx); err != nil {
		log.Warn("AWS config unavailable, S3/SNS features disabled", zap.Error(err))
	} else {
		awsCfg = &loaded
	}

	// Order events fan out to Kafka and, when a topic is configured, SNS.
	var sinks []services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, log)
		defer producer.Close() //nolint:errcheck
		sinks = append(sinks, producer)
	}
	if awsCfg != nil && cfg.SNSTopicArn != "" {
		sinks = append(sinks, events.NewSNSOrderPublisher(aws_pkg.NewSNSClient(*awsCfg), cfg.SNSTopicArn))
	}
	var publisher services.EventPublisher
	if len(sinks) > 0 {
		publisher = events.NewFanout(log, sinks...)
	}

	chapa := services.NewChapaClient(cfg.ChapaSecretKey, cfg.ChapaWebhookSecret, cfg.ChapaBaseURL, log)
	tokens := services.NewTokenService(cfg.JWTSecret)
	settlement := services.NewSettlementService(orderRepo, cartRepo, productRepo, chapa, publisher, log, cfg.AllowNegativeStock)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.RequestLogger(), gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	// 100 requests/min per IP, burst of 50.
	r.Use(middleware.NewRateLimiter(rate.Every(time.Minute/100), 50, 5*time.Minute).Middleware())
	if cfg.Proxy != "" {
		if err := r.SetTrustedProxies([]string{cfg.Proxy}); err != nil {
			log.Fatal("Invalid trusted proxy", zap.Error(err))
		}
	}

	routes.Register(r, routes.Controllers{
		Users:      controllers.NewUserController(userRepo, tokens, log),
		Products:   controllers.NewProductController(productRepo, categoryRepo, cache, awsCfg, cfg.S3PhotoBucket, log),
		Categories: controllers.NewCategoryController(categoryRepo, log),
		Carts:      controllers.NewCartController(cartRepo, productRepo, log),
		Orders:     controllers.NewOrderController(settlement, orderRepo, chapa, cache, log),
		Payments:   controllers.NewPaymentController(chapa, log),
		Ratings:    controllers.NewRatingController(ratingRepo, productRepo, log),
	}, tokens, userRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
