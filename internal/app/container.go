package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/adapter"
	"github.com/kapu/randomuser-swipe-go/internal/config"
	"github.com/kapu/randomuser-swipe-go/internal/constants"
	"github.com/kapu/randomuser-swipe-go/internal/interaction"
	"github.com/kapu/randomuser-swipe-go/internal/remote"
	"github.com/kapu/randomuser-swipe-go/internal/service/directory"
	"github.com/kapu/randomuser-swipe-go/internal/service/store"
	"github.com/kapu/randomuser-swipe-go/internal/util"
)

// Container bundles assembled services for constructing runtime components like Swiper.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store        *store.ProfileStore
	Client       *directory.Client
	Feed         *remote.Feed
	Formatter    *adapter.Formatter
	InputAdapter *adapter.InputAdapter

	closers []func()
}

// Build assembles all infrastructure services. Connections to the cache backend
// are opened here so that Swiper stays focused on orchestration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache slot
	slot, closeSlot, err := BuildSlot(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeSlot)
	profileStore := store.NewProfileStore(slot, logger)

	// Directory client
	client := BuildClient(cfg, logger)

	// Optional remote trigger feed
	var feed *remote.Feed
	if cfg.Remote.WSURL != "" {
		feed = remote.NewFeed(
			cfg.Remote.WSURL,
			constants.WebSocketConfig.MaxReconnectAttempts,
			constants.WebSocketConfig.ReconnectDelay,
			constants.WebSocketConfig.HandshakeTimeout,
			logger,
		)
		logger.Info("Remote trigger feed enabled", zap.String("url", cfg.Remote.WSURL))
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        profileStore,
		Client:       client,
		Feed:         feed,
		Formatter:    adapter.NewFormatter(constants.StringLimits.CardLine),
		InputAdapter: adapter.NewInputAdapter(),
		closers:      closers,
	}, nil
}

// BuildSlot opens the cache backend selected by STORE_BACKEND. The returned
// function releases it.
func BuildSlot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Slot, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return store.NewMemorySlot(), noop, nil

	case config.StoreBackendFile:
		logger.Info("Using file cache slot", zap.String("path", cfg.Store.FilePath))
		return store.NewFileSlot(cfg.Store.FilePath), noop, nil

	case config.StoreBackendRedis:
		slot, err := store.NewRedisSlot(ctx, store.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis slot: %w", err)
		}
		return slot, func() { _ = slot.Close() }, nil

	case config.StoreBackendPostgres:
		slot, err := store.NewPostgresSlot(ctx, store.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres slot: %w", err)
		}
		return slot, func() { _ = slot.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// BuildClient creates the directory client. A zero breaker threshold disables
// the circuit breaker.
func BuildClient(cfg *config.Config, logger *zap.Logger) *directory.Client {
	var opts []directory.Option
	if cfg.Directory.BreakerThreshold > 0 {
		breaker := util.NewCircuitBreaker(cfg.Directory.BreakerThreshold, cfg.Directory.BreakerReset, logger)
		opts = append(opts, directory.WithCircuitBreaker(breaker))
	}

	httpClient := directory.NewHTTPClient(cfg.Directory.Timeout)
	return directory.NewClient(cfg.Directory.BaseURL, httpClient, logger, opts...)
}

// CardConfig converts the card settings into interaction controller config.
func CardConfig(cfg *config.Config) interaction.Config {
	card := interaction.DefaultConfig()
	card.CardWidth = cfg.Card.Width
	card.ThresholdFraction = cfg.Card.ThresholdFraction
	card.ExitDuration = cfg.Card.ExitDuration
	card.SettleDuration = cfg.Card.SettleDuration
	return card
}

// NewSwiper instantiates the terminal runtime writing frames to out.
func (c *Container) NewSwiper(out io.Writer) (*Swiper, error) {
	if c == nil || c.Store == nil || c.Client == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return newSwiper(c, out), nil
}

// Close releases backend connections in reverse order of creation.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
