package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"transport", NewTransportError("request failed", "http://x", cause), CodeTransport},
		{"server", NewServerError(503, 0, nil), CodeServer},
		{"decode", NewDecodeError("empty results", nil), CodeDecode},
		{"cache", NewCacheError("get failed", "get", "k", cause), CodeCache},
		{"plain", stderrors.New("boom"), CodeUnknown},
		{"nil", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Kind(tc.err))
			if tc.err != nil {
				assert.Equal(t, tc.want, Kind(fmt.Errorf("fetch: %w", tc.err)))
			}
		})
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NewTransportError("request failed", "http://x", stderrors.New("dial tcp: timeout"))
	assert.Equal(t, "request failed: dial tcp: timeout", err.Error())
	assert.ErrorIs(t, err, err.Cause)
}

func TestServerErrorCarriesRetryAfter(t *testing.T) {
	var err error = NewServerError(429, 30*time.Second, nil)

	var serverErr *ServerError
	require.True(t, stderrors.As(err, &serverErr))
	assert.Equal(t, 429, serverErr.StatusCode)
	assert.Equal(t, 30*time.Second, serverErr.RetryAfter)
	assert.Equal(t, "directory returned status 429", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewTransportError("x", "u", nil)))
	assert.True(t, IsRetryable(NewServerError(502, 0, nil)))
	assert.True(t, IsRetryable(NewServerError(429, 0, nil)))
	assert.False(t, IsRetryable(NewServerError(404, 0, nil)))
	assert.False(t, IsRetryable(NewDecodeError("bad", nil)))
	assert.False(t, IsRetryable(nil))
}

func TestAppErrorWithCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewAppError("write failed", "STORE_ERROR", 0, map[string]any{"path": "x"}).WithCause(cause)

	assert.Equal(t, "STORE_ERROR", Kind(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "write failed: disk full", err.Error())

	decode := NewDecodeError("bad envelope", cause)
	assert.ErrorIs(t, decode, cause)
	assert.Nil(t, NewDecodeError("empty", nil).Cause)
}
