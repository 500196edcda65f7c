// Package session connects the fetch cycle to the card on screen: every loaded
// profile gets a fresh card controller, and every card decision asks for the
// next profile.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/interaction"
	"github.com/kapu/randomuser-swipe-go/internal/observe"
	"github.com/kapu/randomuser-swipe-go/internal/service/fetch"
)

// Fetcher is the part of fetch.Controller the session drives.
type Fetcher interface {
	State() fetch.State
	Subscribe(fn func(fetch.State)) func()
	PrimeFromCache(ctx context.Context) bool
	RequestNext(ctx context.Context) bool
}

// Snapshot is everything a screen needs to render.
type Snapshot struct {
	Fetch fetch.State
	// Profile is the card on screen. It survives a failed fetch so the last card
	// stays visible next to the error.
	Profile *domain.Profile
	Card    interaction.State
}

// Session must be driven from the control goroutine.
type Session struct {
	ctx       context.Context
	fetcher   Fetcher
	scheduler interaction.Scheduler
	cardCfg   interaction.Config
	logger    *zap.Logger

	profile     *domain.Profile
	card        *interaction.Controller
	unsubCard   func()
	unsubFetch  func()
	decisions   int
	observers   observe.Observers[Snapshot]
	onDecisions observe.Observers[Decided]
}

// Decided reports one card outcome.
type Decided struct {
	ProfileID string
	Decision  domain.Decision
}

// New wires a card controller to fetcher. Nothing is fetched until Start.
func New(ctx context.Context, fetcher Fetcher, scheduler interaction.Scheduler, cardCfg interaction.Config, logger *zap.Logger) *Session {
	s := &Session{
		ctx:       ctx,
		fetcher:   fetcher,
		scheduler: scheduler,
		cardCfg:   cardCfg,
		logger:    logger,
	}
	s.unsubFetch = fetcher.Subscribe(s.onFetchState)
	return s
}

// Start runs the cold-start sequence: show the cached profile if there is one,
// then fetch a live one regardless.
func (s *Session) Start() {
	if s.fetcher.PrimeFromCache(s.ctx) {
		s.logger.Debug("Showing cached profile while the first fetch runs")
	}
	s.fetcher.RequestNext(s.ctx)
}

// Accept triggers an accept on the shown card.
func (s *Session) Accept() bool {
	return s.trigger(domain.DecisionAccept)
}

// Reject triggers a reject on the shown card.
func (s *Session) Reject() bool {
	return s.trigger(domain.DecisionReject)
}

// Trigger starts the exit animation for decision. It is a no-op unless the card is idle.
func (s *Session) Trigger(decision domain.Decision) bool {
	return s.trigger(decision)
}

func (s *Session) trigger(decision domain.Decision) bool {
	if s.card == nil {
		return false
	}
	return s.card.Trigger(decision)
}

// Drag moves the card by dx. dy is accepted and ignored.
func (s *Session) Drag(dx, dy float64) bool {
	if s.card == nil {
		return false
	}
	return s.card.DragChanged(dx, dy)
}

// Release ends a drag at dx, either resolving or settling back.
func (s *Session) Release(dx, dy float64) {
	if s.card == nil {
		return
	}
	s.card.DragEnded(dx, dy)
}

// Retry re-requests after a failure. It does nothing in any other state.
func (s *Session) Retry() bool {
	if s.fetcher.State().Status != fetch.StatusFailed {
		return false
	}
	return s.fetcher.RequestNext(s.ctx)
}

// Snapshot returns the shown profile with fetch and card state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Fetch:   s.fetcher.State(),
		Profile: s.profile,
	}
	if s.card != nil {
		snap.Card = s.card.State()
	}
	return snap
}

// Decisions is the number of cards decided so far.
func (s *Session) Decisions() int {
	return s.decisions
}

// Subscribe registers fn for every snapshot change.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	return s.observers.Subscribe(fn)
}

// OnDecision registers fn for every decided card.
func (s *Session) OnDecision(fn func(Decided)) func() {
	return s.onDecisions.Subscribe(fn)
}

// Close stops following fetch results and discards the card, cancelling a
// pending decision.
func (s *Session) Close() {
	if s.unsubFetch != nil {
		s.unsubFetch()
		s.unsubFetch = nil
	}
	s.dropCard()
}

func (s *Session) onFetchState(state fetch.State) {
	if state.Status == fetch.StatusLoaded && state.Profile != nil {
		s.offer(state.Profile)
	}
	s.publish()
}

// offer shows p unless it is already on screen or the current card is leaving,
// in which case the decision handler picks it up.
func (s *Session) offer(p *domain.Profile) {
	if s.profile != nil && s.profile.ID == p.ID {
		return
	}
	if s.card != nil && s.card.State().Phase == interaction.PhaseResolving {
		return
	}
	s.showCard(p)
}

func (s *Session) showCard(p *domain.Profile) {
	s.dropCard()

	s.profile = p
	card := interaction.New(s.cardCfg, s.scheduler, func(d domain.Decision) {
		s.onDecision(p.ID, d)
	}, s.logger.With(zap.String("profile_id", p.ID)))
	s.card = card
	s.unsubCard = card.Subscribe(func(interaction.State) { s.publish() })

	s.logger.Debug("Card shown", zap.String("profile_id", p.ID))
}

func (s *Session) dropCard() {
	if s.card == nil {
		return
	}
	s.unsubCard()
	s.card.Discard()
	s.card = nil
	s.unsubCard = nil
}

func (s *Session) onDecision(profileID string, decision domain.Decision) {
	s.decisions++
	s.logger.Info("Card decided",
		zap.String("profile_id", profileID),
		zap.String("decision", decision.String()),
		zap.Int("total", s.decisions),
	)
	s.onDecisions.Notify(Decided{ProfileID: profileID, Decision: decision})

	// A profile that landed while the card was leaving is shown now instead of
	// being skipped. Otherwise ask for the next one; a fetch already in flight
	// will deliver it.
	state := s.fetcher.State()
	if state.Status == fetch.StatusLoaded && state.Profile != nil && state.Profile.ID != profileID {
		s.showCard(state.Profile)
		s.publish()
		return
	}
	s.fetcher.RequestNext(s.ctx)
}

func (s *Session) publish() {
	s.observers.Notify(s.Snapshot())
}
