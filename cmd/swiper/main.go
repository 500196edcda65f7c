package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/app"
	"github.com/kapu/randomuser-swipe-go/internal/config"
	"github.com/kapu/randomuser-swipe-go/internal/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Random user swiper starting...",
		zap.String("log_level", cfg.Logging.Level),
		zap.String("store_backend", cfg.Store.Backend),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}

	swiper, err := container.NewSwiper(os.Stdout)
	if err != nil {
		logger.Error("Failed to initialize swiper", zap.Error(err))
		container.Close()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := swiper.Start(ctx); err != nil {
		logger.Error("Failed to start swiper", zap.Error(err))
		container.Close()
		os.Exit(1)
	}

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- swiper.Run(ctx, os.Stdin)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-doneCh:
		if err != nil && !errors.Is(err, app.ErrQuit) {
			logger.Error("Input loop ended", zap.Error(err))
		}
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := swiper.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("Shutdown complete")
}
