// Package loop provides the single control goroutine that owns all state
// transitions. Work from other goroutines reaches it through Post.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Do when the loop ends before fn could run.
var ErrStopped = errors.New("control loop stopped")

// Dispatcher runs fn on the control goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Loop is an unbounded FIFO of closures drained by Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopCh  chan struct{}
	stopped bool
	logger  *zap.Logger
}

// New creates a loop. Posts queue up until Run starts.
func New(logger *zap.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues fn. It never blocks, so it is safe to call from the loop itself.
// Posts after Stop are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After posts fn onto the loop once d has elapsed. The returned cancel function
// prevents fn from running if the timer has not fired yet.
func (l *Loop) After(d time.Duration, fn func()) func() {
	var (
		mu        sync.Mutex
		cancelled bool
	)
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			mu.Lock()
			skip := cancelled
			mu.Unlock()
			if !skip {
				fn()
			}
		})
	})

	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		timer.Stop()
	}
}

// Run drains the queue until ctx is done or Stop is called. The loop cannot be
// restarted afterwards.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("Control loop started")
	defer l.logger.Debug("Control loop stopped")
	defer l.Stop()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Stop ends Run and drops later posts. Safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.stopCh)
}

// Do runs fn on the loop and waits for it to finish, or for ctx to end.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})

	select {
	case <-done:
		return nil
	case <-l.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
