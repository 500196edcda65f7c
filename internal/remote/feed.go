// Package remote listens on a WebSocket for accept/reject/retry triggers
// pushed by another process.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/observe"
	"github.com/kapu/randomuser-swipe-go/internal/util"
)

var errFeedClosed = errors.New("remote feed closed")

type Feed struct {
	wsURL                string
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	handshakeTimeout     time.Duration
	logger               *zap.Logger

	connMu            sync.Mutex
	conn              *websocket.Conn
	reconnectAttempts int

	stateMu sync.RWMutex
	state   State

	commands observe.Observers[Command]
	states   observe.Observers[State]

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewFeed creates a disconnected feed. Call Connect to start listening.
func NewFeed(wsURL string, maxReconnectAttempts int, reconnectDelay, handshakeTimeout time.Duration, logger *zap.Logger) *Feed {
	return &Feed{
		wsURL:                wsURL,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		handshakeTimeout:     handshakeTimeout,
		logger:               logger,
		state:                StateDisconnected,
		stopCh:               make(chan struct{}),
	}
}

// Connect dials once. A failed dial still schedules background reconnects, so
// callers may treat the error as informational.
func (f *Feed) Connect(ctx context.Context) error {
	if f.stopped() {
		return errFeedClosed
	}

	state := f.State()
	if state == StateConnected || state == StateConnecting {
		f.logger.Warn("Remote feed already connected or connecting")
		return nil
	}

	f.setState(StateConnecting)

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: f.handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		f.logger.Warn("Failed to connect remote feed", zap.String("url", f.wsURL), zap.Error(err))
		f.setState(StateDisconnected)
		f.scheduleReconnect(ctx)
		return err
	}

	f.connMu.Lock()
	if f.stopped() {
		f.connMu.Unlock()
		_ = conn.Close()
		return errFeedClosed
	}
	f.conn = conn
	f.reconnectAttempts = 0
	f.connMu.Unlock()

	f.setState(StateConnected)
	f.logger.Info("Remote feed connected", zap.String("url", f.wsURL))

	f.wg.Add(1)
	go f.listen(ctx, conn)

	return nil
}

func (f *Feed) listen(ctx context.Context, conn *websocket.Conn) {
	defer f.wg.Done()
	defer f.logger.Debug("Remote feed listener stopped")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			f.connMu.Lock()
			if f.conn == conn {
				f.conn = nil
			}
			f.connMu.Unlock()
			_ = conn.Close()

			if f.stopped() || ctx.Err() != nil {
				return
			}
			f.logger.Warn("Remote feed read error", zap.Error(err))
			f.setState(StateDisconnected)
			f.scheduleReconnect(ctx)
			return
		}

		f.handleMessage(data)
	}
}

func (f *Feed) handleMessage(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		f.logger.Warn("Failed to parse remote command",
			zap.Error(err),
			zap.String("data", util.TruncateString(string(data), 200)),
		)
		return
	}

	normalized, ok := cmd.normalize()
	if !ok {
		f.logger.Warn("Unknown remote action", zap.String("action", string(cmd.Action)))
		return
	}

	f.logger.Debug("Remote command received", zap.String("action", string(normalized.Action)))
	f.commands.Notify(normalized)
}

func (f *Feed) scheduleReconnect(ctx context.Context) {
	f.connMu.Lock()
	f.reconnectAttempts++
	attempt := f.reconnectAttempts
	f.connMu.Unlock()

	if attempt > f.maxReconnectAttempts {
		f.logger.Error("Remote feed gave up reconnecting", zap.Int("attempts", attempt-1))
		f.setState(StateFailed)
		return
	}

	f.setState(StateReconnecting)
	f.logger.Info("Scheduling remote feed reconnect",
		zap.Int("attempt", attempt),
		zap.Int("max", f.maxReconnectAttempts),
		zap.Duration("delay", f.reconnectDelay),
	)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		timer := time.NewTimer(f.reconnectDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
			// Connect schedules the next attempt itself on failure.
			_ = f.Connect(ctx)
		case <-ctx.Done():
		case <-f.stopCh:
		}
	}()
}

// OnCommand registers a callback for decoded commands. Callbacks run on the
// listener goroutine.
func (f *Feed) OnCommand(callback func(Command)) func() {
	return f.commands.Subscribe(callback)
}

// OnStateChange registers a callback for connection state transitions.
func (f *Feed) OnStateChange(callback func(State)) func() {
	return f.states.Subscribe(callback)
}

func (f *Feed) setState(next State) {
	f.stateMu.Lock()
	prev := f.state
	f.state = next
	f.stateMu.Unlock()

	if prev == next {
		return
	}
	f.logger.Debug("Remote feed state changed",
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
	f.states.Notify(next)
}

// State returns the current connection state.
func (f *Feed) State() State {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()
	return f.state
}

// IsConnected reports whether a listener is active.
func (f *Feed) IsConnected() bool {
	return f.State() == StateConnected
}

func (f *Feed) stopped() bool {
	select {
	case <-f.stopCh:
		return true
	default:
		return false
	}
}

// Close stops reconnecting, closes the socket and waits briefly for the
// listener to exit.
func (f *Feed) Close() error {
	f.stopOnce.Do(func() {
		close(f.stopCh)
	})

	var closeErr error
	f.connMu.Lock()
	if f.conn != nil {
		closeErr = f.conn.Close()
		f.conn = nil
	}
	f.reconnectAttempts = 0
	f.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		f.logger.Warn("Timeout waiting for remote feed listener to stop")
	}

	f.setState(StateDisconnected)
	f.logger.Info("Remote feed closed")
	return closeErr
}
