package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parkledger/internal/api"
	"parkledger/internal/api/handler"
	"parkledger/internal/api/middleware"
	"parkledger/internal/config"
	"parkledger/internal/gate"
	"parkledger/internal/service"
)

func runServe(cmd *cobra.Command) error {
	cfg, flush, err := bootstrap()
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 30*time.Second)
	store, err := openStorage(startupCtx, cfg)
	if err != nil {
		cancelStartup()
		return err
	}
	defer store.close()

	// Schema creation is idempotent, so serve applies it as well.
	err = store.migrate(startupCtx)
	cancelStartup()
	if err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	wsManager := handler.NewWebSocketManager()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		wsManager.Start(ctx)
	}()
	zap.S().Info("WebSocket manager started")

	authService := service.NewAuthService(store.users, cfg.JWTSecret, cfg.JWTExpirationHours)
	parkingService := service.NewParkingService(store.sessions, store.users, store.feedback,
		service.WithSpotCount(cfg.SpotCount),
		service.WithNotifier(wsManager),
	)
	feedbackService := service.NewFeedbackService(store.feedback)

	if err := startGateConsumer(ctx, cfg, parkingService, &wg); err != nil {
		return err
	}

	router := api.SetupRouter(api.Dependencies{
		Logger:          zap.L(),
		AuthService:     authService,
		Ledger:          parkingService,
		FeedbackService: feedbackService,
		AuthMiddleware:  middleware.NewAuthMiddleware(authService),
		WSManager:       wsManager,
		Ping:            store.ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.S().Infof("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	zap.S().Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("Server forced to shut down: %v", err)
	}

	waitWithTimeout(&wg, 5*time.Second)
	zap.S().Info("Server stopped")
	return nil
}

func startGateConsumer(ctx context.Context, cfg *config.Config, ledger service.ParkingLedger, wg *sync.WaitGroup) error {
	if cfg.SQSGateQueueURL == "" {
		zap.S().Info("SQS_GATE_QUEUE_URL not set, gate consumer disabled")
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}
	zap.S().Infof("AWS config loaded for region %s", cfg.AWSRegion)

	consumer := gate.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.SQSGateQueueURL, ledger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Start(ctx)
		zap.S().Info("SQS consumer stopped")
	}()
	return nil
}

func waitWithTimeout(wg *sync.WaitGroup, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		zap.S().Warn("Background workers did not stop in time")
	}
}
