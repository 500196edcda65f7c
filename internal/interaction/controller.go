// Package interaction turns drag gestures and button taps on one card into a
// single accept or reject decision.
package interaction

import (
	"time"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/constants"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/observe"
)

// Scheduler runs fn on the control goroutine after d. The returned function
// cancels a timer that has not fired yet.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

type Config struct {
	CardWidth         float64
	ThresholdFraction float64
	ExitOvershoot     float64
	ExitDuration      time.Duration
	SettleDuration    time.Duration
}

// DefaultConfig returns the stock card geometry and animation timings.
func DefaultConfig() Config {
	return Config{
		CardWidth:         constants.GestureConfig.CardWidth,
		ThresholdFraction: constants.GestureConfig.ThresholdFraction,
		ExitOvershoot:     constants.GestureConfig.ExitOvershoot,
		ExitDuration:      constants.GestureConfig.ExitDuration,
		SettleDuration:    constants.GestureConfig.SettleDuration,
	}
}

// Controller is single-use: one per displayed card. It must be driven from the
// control goroutine, the same one the Scheduler posts to.
type Controller struct {
	cfg        Config
	scheduler  Scheduler
	onDecision func(domain.Decision)
	logger     *zap.Logger

	state       State
	cancelTimer func()
	observers   observe.Observers[State]
}

// New creates a controller in the Idle phase. onDecision runs once per card,
// after the exit animation.
func New(cfg Config, scheduler Scheduler, onDecision func(domain.Decision), logger *zap.Logger) *Controller {
	if cfg.ExitOvershoot == 0 {
		cfg.ExitOvershoot = constants.GestureConfig.ExitOvershoot
	}
	return &Controller{
		cfg:        cfg,
		scheduler:  scheduler,
		onDecision: onDecision,
		logger:     logger,
		state:      State{Phase: PhaseIdle},
	}
}

// State returns the current card state.
func (c *Controller) State() State {
	return c.state
}

// Subscribe registers fn for every state change and returns its unsubscribe func.
func (c *Controller) Subscribe(fn func(State)) func() {
	return c.observers.Subscribe(fn)
}

// Threshold is the horizontal distance a drag must exceed to decide.
func (c *Controller) Threshold() float64 {
	return c.cfg.CardWidth * c.cfg.ThresholdFraction
}

// DragChanged tracks the pointer. Only the horizontal component matters.
func (c *Controller) DragChanged(dx, _ float64) bool {
	switch c.state.Phase {
	case PhaseIdle, PhaseDragging:
		c.setState(State{Phase: PhaseDragging, Offset: dx})
		return true
	default:
		return false
	}
}

// DragEnded resolves the drag: past the threshold it decides, otherwise the card
// settles back. Landing exactly on the threshold settles back.
func (c *Controller) DragEnded(dx, _ float64) {
	if c.state.Phase != PhaseDragging {
		return
	}

	threshold := c.Threshold()
	switch {
	case dx > threshold:
		c.resolve(domain.DecisionAccept)
	case dx < -threshold:
		c.resolve(domain.DecisionReject)
	default:
		c.settleBack()
	}
}

// Trigger is the button path. It only acts on an idle card, so it can never
// interrupt a drag, a settle or a resolution already under way.
func (c *Controller) Trigger(decision domain.Decision) bool {
	if c.state.Phase != PhaseIdle {
		c.logger.Debug("Ignoring trigger on busy card",
			zap.String("decision", decision.String()),
			zap.String("phase", c.state.Phase.String()),
		)
		return false
	}
	c.resolve(decision)
	return true
}

func (c *Controller) resolve(decision domain.Decision) {
	exit := c.cfg.CardWidth * c.cfg.ExitOvershoot
	if decision == domain.DecisionReject {
		exit = -exit
	}
	c.setState(State{Phase: PhaseResolving, Offset: exit, Direction: decision})

	c.cancelTimer = c.scheduler.After(c.cfg.ExitDuration, func() {
		c.finish(decision)
	})
}

func (c *Controller) finish(decision domain.Decision) {
	if c.state.Phase != PhaseResolving {
		return
	}
	c.cancelTimer = nil
	c.setState(State{Phase: PhaseDone, Offset: c.state.Offset, Direction: decision})

	c.logger.Debug("Card decided", zap.String("decision", decision.String()))
	if c.onDecision != nil {
		c.onDecision(decision)
	}
}

func (c *Controller) settleBack() {
	c.setState(State{Phase: PhaseSettlingBack, Offset: 0})

	c.cancelTimer = c.scheduler.After(c.cfg.SettleDuration, func() {
		if c.state.Phase != PhaseSettlingBack {
			return
		}
		c.cancelTimer = nil
		c.setState(State{Phase: PhaseIdle})
	})
}

// Discard cancels any pending animation without deciding. Used when the card is
// replaced before it finished, e.g. by a fresher profile.
func (c *Controller) Discard() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	if c.state.Phase != PhaseDone {
		c.setState(State{Phase: PhaseDone, Offset: c.state.Offset})
	}
}

func (c *Controller) setState(next State) {
	c.state = next
	c.observers.Notify(next)
}
