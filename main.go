package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookcheckout/config"
	"bookcheckout/database"
	checkoutRepo "bookcheckout/database/repository/checkout"
	"bookcheckout/handlers"
	"bookcheckout/middleware"
	"bookcheckout/routes"
	"bookcheckout/services/checkout"
	"bookcheckout/services/commerce"
	"bookcheckout/services/orders"
	"bookcheckout/services/payment"
	"bookcheckout/services/scheduling"
	"bookcheckout/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const serviceName = "bookcheckout"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	exporter, err := utils.NewSpanExporter(cfg.TracingExporter, os.Stdout)
	if err != nil {
		logger.Fatal("main: failed to set up tracing", zap.Error(err))
	}
	tracerProvider := utils.NewTracerProvider(serviceName, exporter, cfg.TracingSampleRatio)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("main: failed to flush traces", zap.Error(err))
		}
	}()

	// Checkout state store.
	var (
		repo        checkoutRepo.CheckoutRepository
		redisClient *redis.Client
		mongoClient *mongo.Client
	)
	switch cfg.StoreBackend {
	case config.StoreRedis:
		redisClient, err = utils.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("main: checkout store unavailable", zap.Error(err))
		}
		defer redisClient.Close()
		repo = checkoutRepo.NewRedisCheckoutRepo(redisClient, cfg.CheckoutRetention)
	case config.StoreMongo:
		mongoClient, err = database.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("main: checkout store unavailable", zap.Error(err))
		}
		defer mongoClient.Disconnect(context.Background())
		repo, err = checkoutRepo.NewMongoCheckoutRepo(context.Background(), mongoClient.Database(cfg.DatabaseName))
		if err != nil {
			logger.Fatal("main: failed to prepare checkout collection", zap.Error(err))
		}
	default:
		logger.Warn("main: using in-memory checkout store; state is lost on restart")
		repo = checkoutRepo.NewMemoryCheckoutRepo()
	}

	// Outbound clients.
	httpClient := utils.NewHTTPClient(cfg.HTTPTimeout)
	commerceClient := commerce.NewClient(cfg, httpClient, logger)
	slotClient := scheduling.NewClient(cfg, httpClient, logger)
	gateway, err := payment.NewGateway(cfg, logger)
	if err != nil {
		logger.Fatal("main: failed to build payment gateway", zap.Error(err))
	}

	// services.
	orchestrator := checkout.NewOrchestrator(checkout.SettingsFromConfig(cfg), commerceClient, gateway, repo, logger)
	orchestrator.Attach()
	defer orchestrator.Detach()
	viewer := orders.NewViewer(commerceClient, logger)

	checkoutHandler := handlers.NewCheckoutHandler(orchestrator)
	slotsHandler := handlers.NewSlotsHandler(slotClient)
	ordersHandler := handlers.NewOrdersHandler(viewer)
	webhookHandler := handlers.NewPaymentWebhookHandler(orchestrator)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Health:   handlers.HealthHandler(utils.NewHealthChecker(cfg.StoreBackend, redisClient, mongoClient)),
		GetSlots: slotsHandler.GetSlots,

		BeginCheckout:       checkoutHandler.BeginCheckout,
		GetCheckout:         checkoutHandler.GetCheckout,
		RefreshTotals:       checkoutHandler.RefreshTotals,
		ApplyPromotion:      checkoutHandler.ApplyPromotion,
		InitiatePayment:     checkoutHandler.InitiatePayment,
		ReportPaymentResult: checkoutHandler.ReportPaymentResult,

		PaymentWebhook: webhookHandler.Receive,
		ListOrders:     ordersHandler.ListOrders,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
		return
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
