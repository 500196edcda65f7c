package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/interaction"
	"github.com/kapu/randomuser-swipe-go/internal/service/fetch"
	"github.com/kapu/randomuser-swipe-go/internal/service/store"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

type queueDispatcher struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *queueDispatcher) Post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, fn)
}

func (q *queueDispatcher) Drain() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		fn()
	}
}

type manualScheduler struct {
	timers []func()
}

func (m *manualScheduler) After(_ time.Duration, fn func()) func() {
	cancelled := false
	m.timers = append(m.timers, func() {
		if !cancelled {
			fn()
		}
	})
	return func() { cancelled = true }
}

func (m *manualScheduler) FireAll() {
	pending := m.timers
	m.timers = nil
	for _, fire := range pending {
		fire()
	}
}

// scriptedClient answers calls from a queue of outcomes. An error outcome is
// returned as-is; otherwise a profile with a sequential id is produced.
type scriptedClient struct {
	mu      sync.Mutex
	calls   atomic.Int32
	failing []error
	gate    chan struct{}
}

func (c *scriptedClient) FetchOne(context.Context) (*domain.Profile, error) {
	n := c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.failing) > 0 {
		err := c.failing[0]
		c.failing = c.failing[1:]
		if err != nil {
			return nil, err
		}
	}
	return &domain.Profile{ID: fmt.Sprintf("live-%d", n), FullName: "Person"}, nil
}

type fixture struct {
	client     *scriptedClient
	store      *store.ProfileStore
	dispatcher *queueDispatcher
	scheduler  *manualScheduler
	fetcher    *fetch.Controller
	session    *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		client:     &scriptedClient{},
		store:      store.NewProfileStore(store.NewMemorySlot(), zap.NewNop()),
		dispatcher: &queueDispatcher{},
		scheduler:  &manualScheduler{},
	}
	f.fetcher = fetch.NewController(f.client, f.store, f.dispatcher, zap.NewNop())
	f.session = New(context.Background(), f.fetcher, f.scheduler, interaction.Config{
		CardWidth:         400,
		ThresholdFraction: 0.25,
		ExitDuration:      250 * time.Millisecond,
		SettleDuration:    300 * time.Millisecond,
	}, zap.NewNop())
	t.Cleanup(f.session.Close)
	return f
}

func (f *fixture) settle() {
	f.fetcher.Wait()
	f.dispatcher.Drain()
}

func (f *fixture) shownID() string {
	snap := f.session.Snapshot()
	if snap.Profile == nil {
		return ""
	}
	return snap.Profile.ID
}

func TestStartWithoutCacheFetchesLive(t *testing.T) {
	f := newFixture(t)

	f.session.Start()
	assert.Equal(t, fetch.StatusLoading, f.session.Snapshot().Fetch.Status)
	assert.Empty(t, f.shownID())

	f.settle()
	assert.Equal(t, "live-1", f.shownID())
	assert.Equal(t, interaction.PhaseIdle, f.session.Snapshot().Card.Phase)
}

func TestStartShowsCacheThenReplacesIt(t *testing.T) {
	f := newFixture(t)
	f.store.Save(context.Background(), domain.Profile{ID: "cached", FullName: "Cached Person"})

	f.session.Start()
	assert.Equal(t, "cached", f.shownID())
	assert.Equal(t, fetch.StatusLoading, f.session.Snapshot().Fetch.Status)

	f.settle()
	assert.Equal(t, "live-1", f.shownID())

	cached := f.store.Load(context.Background())
	require.NotNil(t, cached)
	assert.Equal(t, "live-1", cached.ID)
}

func TestDecisionAdvancesToNextProfile(t *testing.T) {
	f := newFixture(t)
	var decided []Decided
	f.session.OnDecision(func(d Decided) { decided = append(decided, d) })

	f.session.Start()
	f.settle()

	require.True(t, f.session.Accept())
	assert.Equal(t, "live-1", f.shownID(), "card stays until the exit animation ends")
	f.scheduler.FireAll()
	f.settle()

	assert.Equal(t, "live-2", f.shownID())
	assert.Equal(t, []Decided{{ProfileID: "live-1", Decision: domain.DecisionAccept}}, decided)
	assert.Equal(t, 1, f.session.Decisions())
	assert.Equal(t, int32(2), f.client.calls.Load())
}

func TestDragThenButtonYieldsOneDecision(t *testing.T) {
	f := newFixture(t)
	f.session.Start()
	f.settle()

	require.True(t, f.session.Drag(-250, 12))
	f.session.Release(-250, 12)
	assert.False(t, f.session.Accept())
	assert.False(t, f.session.Reject())

	f.scheduler.FireAll()
	f.settle()

	assert.Equal(t, 1, f.session.Decisions())
	assert.Equal(t, int32(2), f.client.calls.Load())
}

func TestShortDragSettlesWithoutFetch(t *testing.T) {
	f := newFixture(t)
	f.session.Start()
	f.settle()

	f.session.Drag(100, 0)
	f.session.Release(100, 0)
	f.scheduler.FireAll()
	f.settle()

	assert.Equal(t, 0, f.session.Decisions())
	assert.Equal(t, "live-1", f.shownID())
	assert.Equal(t, int32(1), f.client.calls.Load())
}

func TestFailedFetchKeepsLastCardAndRetries(t *testing.T) {
	f := newFixture(t)
	f.session.Start()
	f.settle()

	f.client.failing = []error{errors.NewServerError(500, 0, nil)}
	f.session.Reject()
	f.scheduler.FireAll()
	f.settle()

	snap := f.session.Snapshot()
	assert.Equal(t, fetch.StatusFailed, snap.Fetch.Status)
	assert.Equal(t, "directory returned status 500", snap.Fetch.Reason)
	assert.Equal(t, "live-1", f.shownID())
	assert.False(t, f.session.Accept(), "decided card cannot decide again")

	require.True(t, f.session.Retry())
	f.settle()
	assert.Equal(t, fetch.StatusLoaded, f.session.Snapshot().Fetch.Status)
	assert.Equal(t, "live-3", f.shownID())
}

func TestRetryOnlyWhenFailed(t *testing.T) {
	f := newFixture(t)
	f.session.Start()
	assert.False(t, f.session.Retry())
	f.settle()
	assert.False(t, f.session.Retry())
}

func TestDecisionOnCachedCardDuringFirstFetch(t *testing.T) {
	f := newFixture(t)
	f.client.gate = make(chan struct{})
	f.store.Save(context.Background(), domain.Profile{ID: "cached", FullName: "Cached"})

	f.session.Start()
	require.True(t, f.session.Accept())
	f.scheduler.FireAll()

	// The first fetch is still running, so the decision does not start another.
	assert.Equal(t, fetch.StatusLoading, f.session.Snapshot().Fetch.Status)
	assert.Equal(t, 1, f.session.Decisions())

	close(f.client.gate)
	f.settle()
	assert.Equal(t, "live-1", f.shownID())
	assert.Equal(t, int32(1), f.client.calls.Load())
}

func TestProfileArrivingDuringExitIsShownAfterDecision(t *testing.T) {
	f := newFixture(t)
	f.client.gate = make(chan struct{})
	f.store.Save(context.Background(), domain.Profile{ID: "cached", FullName: "Cached"})

	f.session.Start()
	f.session.Accept()

	close(f.client.gate)
	f.settle()
	assert.Equal(t, "cached", f.shownID(), "leaving card is not swapped out mid-animation")

	f.scheduler.FireAll()
	f.settle()

	assert.Equal(t, "live-1", f.shownID())
	assert.Equal(t, interaction.PhaseIdle, f.session.Snapshot().Card.Phase)
	assert.Equal(t, int32(1), f.client.calls.Load())
}

func TestSubscribersSeeCardMotion(t *testing.T) {
	f := newFixture(t)
	f.session.Start()
	f.settle()

	var offsets []float64
	f.session.Subscribe(func(s Snapshot) { offsets = append(offsets, s.Card.Offset) })
	f.session.Drag(30, 0)
	f.session.Drag(60, 0)

	assert.Equal(t, []float64{30, 60}, offsets)
}

func TestInputsBeforeFirstCardAreIgnored(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.session.Accept())
	assert.False(t, f.session.Drag(10, 0))
	f.session.Release(10, 0)
	assert.Equal(t, 0, f.session.Decisions())
}
