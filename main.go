package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agromarket/backend/common/logger"
	"github.com/agromarket/backend/config"
	"github.com/agromarket/backend/controllers"
	"github.com/agromarket/backend/database"
	"github.com/agromarket/backend/repository"
	"github.com/agromarket/backend/routes"
	"github.com/agromarket/backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to redis", zap.Error(err))
	}

	store := repository.NewStore(db)
	sessionCarts := repository.NewRedisCartBackend(redisClient, cfg.CartTTL)

	gateway := services.NewGatewayAdapter(cfg.WebhookSecret)
	cartService := services.NewCartService(store.Carts(), sessionCarts, store.Products())
	checkoutService := services.NewCheckoutService(store, cartService, gateway, logger.Log)
	webhookService := services.NewWebhookService(store, gateway, logger.Log)
	orderService := services.NewOrderService(store)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.Register(r,
		controllers.NewCartController(cartService),
		controllers.NewCheckoutController(checkoutService, cartService, store),
		controllers.NewOrderController(orderService),
		controllers.NewWebhookController(webhookService),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("marketplace backend running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("shutdown error", zap.Error(err))
	}
	logger.Log.Info("server shutdown complete")
}
