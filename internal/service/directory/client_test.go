package directory

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/util"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

const oneResult = `{"results":[{"name":{"first":"Ada","last":"Lovelace"},"login":{"uuid":"abc-123"},"location":{"postcode":10001}}]}`

type directoryStub struct {
	server *httptest.Server
	calls  atomic.Int32
	last   atomic.Value
}

func newDirectoryStub(t *testing.T, handler http.HandlerFunc) *directoryStub {
	t.Helper()

	stub := &directoryStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.calls.Add(1)
		stub.last.Store(r.URL.RawQuery)
		handler(w, r)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchOneMapsFirstResult(t *testing.T) {
	stub := newDirectoryStub(t, respond(http.StatusOK, oneResult))
	client := NewClient(stub.server.URL+"/api/", nil, zap.NewNop())

	profile, err := client.FetchOne(context.Background())
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "abc-123", profile.ID)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, "10001", profile.Postcode)
	assert.Equal(t, int32(1), stub.calls.Load())
	assert.Equal(t, "noinfo=1&results=1", stub.last.Load())
}

func TestFetchOneKeepsExistingQuery(t *testing.T) {
	stub := newDirectoryStub(t, respond(http.StatusOK, oneResult))
	client := NewClient(stub.server.URL+"/api/?nat=gb", nil, zap.NewNop())

	_, err := client.FetchOne(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nat=gb&noinfo=1&results=1", stub.last.Load())
}

func TestFetchOneEmptyResultsIsDecodeError(t *testing.T) {
	for _, body := range []string{`{"results":[]}`, `{}`, `{"results":null}`} {
		stub := newDirectoryStub(t, respond(http.StatusOK, body))
		client := NewClient(stub.server.URL, nil, zap.NewNop())

		profile, err := client.FetchOne(context.Background())
		assert.Nil(t, profile, body)

		var decodeErr *errors.DecodeError
		assert.True(t, stderrors.As(err, &decodeErr), body)
	}
}

func TestFetchOneMalformedEnvelopeIsDecodeError(t *testing.T) {
	for _, body := range []string{`<html>`, `{"results": "nope"}`, `{"results":[{"name":"Ada"}]}`} {
		stub := newDirectoryStub(t, respond(http.StatusOK, body))
		client := NewClient(stub.server.URL, nil, zap.NewNop())

		_, err := client.FetchOne(context.Background())
		assert.Equal(t, errors.CodeDecode, errors.Kind(err), body)
	}
}

func TestFetchOneNonSuccessIsServerError(t *testing.T) {
	stub := newDirectoryStub(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := NewClient(stub.server.URL, nil, zap.NewNop())

	_, err := client.FetchOne(context.Background())

	var serverErr *errors.ServerError
	require.True(t, stderrors.As(err, &serverErr))
	assert.Equal(t, http.StatusServiceUnavailable, serverErr.StatusCode)
	assert.Equal(t, 2*time.Minute, serverErr.RetryAfter)
	assert.Equal(t, int32(1), stub.calls.Load(), "no internal retry")
}

func TestFetchOneTransportError(t *testing.T) {
	stub := newDirectoryStub(t, respond(http.StatusOK, oneResult))
	url := stub.server.URL
	stub.server.Close()

	client := NewClient(url, nil, zap.NewNop())
	_, err := client.FetchOne(context.Background())

	assert.Equal(t, errors.CodeTransport, errors.Kind(err))
}

func TestFetchOneInvalidBaseURL(t *testing.T) {
	client := NewClient("not a url", nil, zap.NewNop())
	_, err := client.FetchOne(context.Background())

	assert.Equal(t, errors.CodeTransport, errors.Kind(err))
}

func TestFetchOneHonoursContext(t *testing.T) {
	release := make(chan struct{})
	stub := newDirectoryStub(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(stub.server.URL, nil, zap.NewNop()).FetchOne(ctx)
	assert.Equal(t, errors.CodeTransport, errors.Kind(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCircuitBreakerFailsFastWithoutRequest(t *testing.T) {
	stub := newDirectoryStub(t, respond(http.StatusBadGateway, ""))
	breaker := util.NewCircuitBreaker(2, time.Minute, zap.NewNop())
	client := NewClient(stub.server.URL, nil, zap.NewNop(), WithCircuitBreaker(breaker))

	for i := 0; i < 2; i++ {
		_, err := client.FetchOne(context.Background())
		assert.Equal(t, errors.CodeServer, errors.Kind(err))
	}

	_, err := client.FetchOne(context.Background())
	assert.Equal(t, errors.CodeTransport, errors.Kind(err))
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))

	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	assert.InDelta(t, float64(90*time.Second), float64(parseRetryAfter(future)), float64(2*time.Second))
}
