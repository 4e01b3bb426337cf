package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stripe-monitor-backend/internal/client"
	"stripe-monitor-backend/internal/config"
	"stripe-monitor-backend/internal/logger"
	"stripe-monitor-backend/internal/repository"
	"stripe-monitor-backend/internal/server"
	"stripe-monitor-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitDBClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe)

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	setupRequestRepo := repository.NewSetupRequestRepository(db)
	planRepo := repository.NewPlanRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	cacheRepo := repository.NewCacheRepository(db)
	oauthStateRepo := repository.NewOAuthStateRepository(db)

	if err := planRepo.Seed(context.Background()); err != nil {
		log.Fatal("seed plans", zap.Error(err))
	}

	invalidationService := service.NewInvalidationService(userRepo, cacheRepo, log)
	userService := service.NewUserService(
		userRepo, oauthStateRepo, stripeClient, invalidationService,
		cfg.Stripe, cfg.JWT,
	)
	paymentService := service.NewPaymentService(paymentRepo)
	setupRequestService := service.NewSetupRequestService(setupRequestRepo)
	planService := service.NewPlanService(planRepo)
	webhookService := service.NewWebhookService(
		cfg.Stripe.WebhookSecret, webhookEventRepo, invalidationService, log,
	)
	stripeDataService := service.NewStripeDataService(stripeClient, cacheRepo, log)

	srv := server.NewServer(
		cfg.JWT.Secret,
		userService,
		paymentService,
		setupRequestService,
		planService,
		webhookService,
		stripeDataService,
		invalidationService,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
