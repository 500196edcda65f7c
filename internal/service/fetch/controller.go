// Package fetch owns the single "current profile" state and the fetch cycle
// that replaces it.
package fetch

import (
	"context"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/loop"
	"github.com/kapu/randomuser-swipe-go/internal/observe"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

type ProfileClient interface {
	FetchOne(ctx context.Context) (*domain.Profile, error)
}

type ProfileStore interface {
	Save(ctx context.Context, p domain.Profile)
	Load(ctx context.Context) *domain.Profile
}

// Controller must only be used from the dispatcher's goroutine. The network call
// and the cache write run elsewhere; their outcome is posted back before any
// state changes.
type Controller struct {
	client     ProfileClient
	store      ProfileStore
	dispatcher loop.Dispatcher
	logger     *zap.Logger

	state     State
	observers observe.Observers[State]
	inflight  conc.WaitGroup
}

// NewController creates an idle controller. State changes are applied on dispatcher.
func NewController(client ProfileClient, store ProfileStore, dispatcher loop.Dispatcher, logger *zap.Logger) *Controller {
	return &Controller{
		client:     client,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		state:      Idle(),
	}
}

// State returns the current fetch state.
func (c *Controller) State() State {
	return c.state
}

// Subscribe registers fn for every later state change.
func (c *Controller) Subscribe(fn func(State)) func() {
	return c.observers.Subscribe(fn)
}

// PrimeFromCache publishes the cached profile, if any, without touching the
// network. It only acts on a controller that has not started yet.
func (c *Controller) PrimeFromCache(ctx context.Context) bool {
	if c.state.Status != StatusIdle {
		return false
	}

	cached := c.store.Load(ctx)
	if cached == nil {
		c.logger.Debug("No cached profile to prime from")
		return false
	}

	c.logger.Info("Primed from cached profile", zap.String("profile_id", cached.ID))
	c.setState(Loaded(cached))
	return true
}

// RequestNext starts a fetch. While one is outstanding it does nothing and
// returns false.
func (c *Controller) RequestNext(ctx context.Context) bool {
	if c.state.Status == StatusLoading {
		c.logger.Debug("Fetch already in flight, ignoring request")
		return false
	}

	c.setState(Loading())

	c.inflight.Go(func() {
		profile, err := c.client.FetchOne(ctx)
		if err == nil {
			c.store.Save(ctx, *profile)
		}

		c.dispatcher.Post(func() {
			c.complete(profile, err)
		})
	})
	return true
}

func (c *Controller) complete(profile *domain.Profile, err error) {
	if err != nil {
		c.logger.Warn("Profile fetch failed",
			zap.String("kind", errors.Kind(err)),
			zap.Bool("retryable", errors.IsRetryable(err)),
			zap.Error(err),
		)
		c.setState(Failed(err))
		return
	}

	c.logger.Info("Profile loaded",
		zap.String("profile_id", profile.ID),
		zap.String("name", profile.FullName),
	)
	c.setState(Loaded(profile))
}

func (c *Controller) setState(next State) {
	prev := c.state
	c.state = next

	c.logger.Debug("Fetch state changed",
		zap.String("from", prev.Status.String()),
		zap.String("to", next.Status.String()),
	)
	c.observers.Notify(next)
}

// Wait blocks until every started fetch has posted its result. A panic from the
// client or the store is re-raised here.
func (c *Controller) Wait() {
	c.inflight.Wait()
}
