package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/domain"
)

type feedServer struct {
	server      *httptest.Server
	connections atomic.Int32
}

func newFeedServer(t *testing.T, handle func(n int32, conn *websocket.Conn)) *feedServer {
	t.Helper()

	upgrader := websocket.Upgrader{}
	fs := &feedServer{}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(fs.connections.Add(1), conn)
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *feedServer) url() string {
	return "ws" + strings.TrimPrefix(fs.server.URL, "http")
}

// holdOpen keeps the server side alive until the client goes away.
func holdOpen(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func newTestFeed(url string, maxAttempts int) *Feed {
	return NewFeed(url, maxAttempts, 10*time.Millisecond, time.Second, zap.NewNop())
}

func TestFeedDeliversKnownCommands(t *testing.T) {
	fs := newFeedServer(t, func(_ int32, conn *websocket.Conn) {
		for _, msg := range []string{
			`{"action":"accept"}`,
			`{"action":"bogus"}`,
			`not json`,
			`{"action":" Dislike "}`,
			`{"action":"retry"}`,
		} {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		}
		holdOpen(conn)
	})

	feed := newTestFeed(fs.url(), 0)
	received := make(chan Command, 8)
	feed.OnCommand(func(c Command) { received <- c })

	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Close()
	assert.True(t, feed.IsConnected())

	var got []Action
	for len(got) < 3 {
		select {
		case c := <-received:
			got = append(got, c.Action)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []Action{ActionAccept, ActionReject, ActionRetry}, got)
}

func TestFeedReconnectsAfterServerDrop(t *testing.T) {
	fs := newFeedServer(t, func(n int32, conn *websocket.Conn) {
		if n == 1 {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"reject"}`))
		holdOpen(conn)
	})

	feed := newTestFeed(fs.url(), 3)
	received := make(chan Command, 1)
	feed.OnCommand(func(c Command) { received <- c })

	var states []State
	statesCh := make(chan State, 16)
	feed.OnStateChange(func(s State) { statesCh <- s })

	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Close()

	select {
	case c := <-received:
		assert.Equal(t, ActionReject, c.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("no command after reconnect")
	}
	assert.Equal(t, int32(2), fs.connections.Load())

	for len(statesCh) > 0 {
		states = append(states, <-statesCh)
	}
	assert.Contains(t, states, StateReconnecting)
	assert.Equal(t, StateConnected, states[len(states)-1])
}

func TestFeedGivesUpAfterMaxAttempts(t *testing.T) {
	fs := newFeedServer(t, func(int32, *websocket.Conn) {})
	url := fs.url()
	fs.server.Close()

	feed := newTestFeed(url, 2)
	defer feed.Close()

	statesCh := make(chan State, 64)
	feed.OnStateChange(func(s State) { statesCh <- s })

	assert.Error(t, feed.Connect(context.Background()))
	require.Eventually(t, func() bool {
		return feed.State() == StateFailed
	}, 2*time.Second, 5*time.Millisecond)

	// Stays failed: no attempt is scheduled past the limit.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateFailed, feed.State())

	var states []State
	for len(statesCh) > 0 {
		states = append(states, <-statesCh)
	}
	failed := 0
	for _, s := range states {
		if s == StateFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed, "failed dials before the limit are recoverable: %v", states)
	assert.Equal(t, StateFailed, states[len(states)-1])
	assert.Contains(t, states, StateDisconnected)
}

func TestFeedCloseStopsReconnecting(t *testing.T) {
	fs := newFeedServer(t, func(_ int32, conn *websocket.Conn) { holdOpen(conn) })

	feed := newTestFeed(fs.url(), 5)
	require.NoError(t, feed.Connect(context.Background()))

	require.NoError(t, feed.Close())
	assert.Equal(t, StateDisconnected, feed.State())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fs.connections.Load())
	assert.ErrorIs(t, feed.Connect(context.Background()), errFeedClosed)
}

func TestCommandDecision(t *testing.T) {
	d, ok := Command{Action: ActionAccept}.Decision()
	assert.True(t, ok)
	assert.Equal(t, domain.DecisionAccept, d)

	d, ok = Command{Action: ActionReject}.Decision()
	assert.True(t, ok)
	assert.Equal(t, domain.DecisionReject, d)

	_, ok = Command{Action: ActionRetry}.Decision()
	assert.False(t, ok)
}
