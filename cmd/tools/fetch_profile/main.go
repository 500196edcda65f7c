package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/app"
	"github.com/kapu/randomuser-swipe-go/internal/config"
	"github.com/kapu/randomuser-swipe-go/internal/service/store"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

func main() {
	var (
		reset   bool
		noSave  bool
		timeout time.Duration
	)
	flag.BoolVar(&reset, "reset", false, "clear the cached profile and exit")
	flag.BoolVar(&noSave, "no-save", false, "print the fetched profile without caching it")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "overall deadline")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slot, closeSlot, err := app.BuildSlot(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open cache slot", zap.Error(err))
	}
	defer closeSlot()
	profileStore := store.NewProfileStore(slot, logger)

	if reset {
		if err := profileStore.Clear(ctx); err != nil {
			logger.Fatal("failed to clear cached profile", zap.Error(err))
		}
		logger.Info("Cached profile cleared", zap.String("backend", cfg.Store.Backend))
		return
	}

	profile, err := app.BuildClient(cfg, logger).FetchOne(ctx)
	if err != nil {
		logger.Fatal("failed to fetch profile",
			zap.String("kind", errors.Kind(err)),
			zap.Error(err),
		)
	}

	if !noSave {
		profileStore.Save(ctx, *profile)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(store.NewCachedProfile(*profile)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode profile: %v\n", err)
		os.Exit(1)
	}
}
