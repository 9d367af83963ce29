package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/mamipapa/store-backend/internal/config"
	"github.com/mamipapa/store-backend/internal/database"
	"github.com/mamipapa/store-backend/internal/handlers"
	"github.com/mamipapa/store-backend/internal/jobs"
	"github.com/mamipapa/store-backend/internal/middleware"
	"github.com/mamipapa/store-backend/internal/queue"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/mamipapa/store-backend/internal/routes"
	"github.com/mamipapa/store-backend/internal/services/auth"
	"github.com/mamipapa/store-backend/internal/services/order"
	"github.com/mamipapa/store-backend/internal/services/payment/marzpay"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Invalid Redis URL: %v", err)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)

	// Repositories
	payments := repository.NewPaymentRepository(db)
	products := repository.NewProductRepository(db)
	users := repository.NewUserRepository(db)
	orders := repository.NewOrderRepository(db)

	// Job queue and worker
	jobQueue := queue.NewRedisQueue(redisClient, logger)
	worker := queue.NewWorker(jobQueue, logger)
	jobs.RegisterJobHandlers(worker, orders, jobQueue, logger)
	worker.Start()
	defer worker.Stop()

	// MarzPay gateway wiring
	prefixes := make(map[string]marzpay.Provider)
	for _, p := range cfg.MarzPay.MTNPrefixes {
		prefixes[p] = marzpay.ProviderMTN
	}
	for _, p := range cfg.MarzPay.AirtelPrefixes {
		prefixes[p] = marzpay.ProviderAirtel
	}
	normalizer := marzpay.NewPhoneNormalizer(prefixes)

	client := marzpay.NewClient(
		cfg.MarzPay.BaseURL,
		cfg.MarzPay.APIKey,
		cfg.MarzPay.APISecret,
		time.Duration(cfg.MarzPay.TimeoutSeconds)*time.Second,
		normalizer,
		logger,
	)
	builder := marzpay.NewRequestBuilder(normalizer, cfg.MarzPay.Country, cfg.Store.PaymentDescription, cfg.MarzPay.CallbackURL)
	collections := marzpay.NewCollectionService(client, builder, payments, logger)
	reconciler := marzpay.NewReconciler(payments, jobQueue, logger)

	poller := marzpay.NewStatusPoller(
		payments,
		client,
		reconciler,
		time.Duration(cfg.MarzPay.PollIntervalMinutes)*time.Minute,
		time.Duration(cfg.MarzPay.PendingAgeMinutes)*time.Minute,
		logger,
	)
	if err := poller.Start(); err != nil {
		log.Fatalf("Failed to start status poller: %v", err)
	}
	defer poller.Stop()

	// Services
	orderService := order.NewService(orders, products, logger)
	authService := auth.NewService(users, logger)

	// Router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Store.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	rateLimiter := middleware.NewRateLimiter(10, 20)
	defer rateLimiter.Stop()

	routes.Register(router, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		User:        handlers.NewUserHandler(users),
		Product:     handlers.NewProductHandler(products),
		Order:       handlers.NewOrderHandler(orderService, orders),
		Payment:     handlers.NewPaymentHandler(collections, client, payments, orders),
		Webhook:     handlers.NewPaymentWebhookHandler(reconciler),
		RateLimiter: rateLimiter,
	})

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
}
