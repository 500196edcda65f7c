package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Error codes
const (
	CodeTransport = "TRANSPORT_ERROR"
	CodeServer    = "SERVER_ERROR"
	CodeDecode    = "DECODE_ERROR"
	CodeCache     = "CACHE_ERROR"
	CodeUnknown   = "UNKNOWN_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError builds the shared base; kind-specific constructors embed it.
func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

// WithCause attaches the underlying error and returns e for chaining.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// TransportError means the request could not be sent or its response could not be read.
type TransportError struct {
	*AppError
	URL string
}

// NewTransportError wraps a failure to send or read a request to url.
func NewTransportError(message, url string, cause error) *TransportError {
	return &TransportError{
		AppError: NewAppError(message, CodeTransport, 0, map[string]any{"url": url}).WithCause(cause),
		URL:      url,
	}
}

// ServerError is a completed exchange with a non-2xx status.
type ServerError struct {
	*AppError
	// RetryAfter is the server's Retry-After hint, zero when none was sent.
	RetryAfter time.Duration
}

// NewServerError records a non-2xx status and its Retry-After hint.
func NewServerError(statusCode int, retryAfter time.Duration, context map[string]any) *ServerError {
	return &ServerError{
		AppError:   NewAppError(fmt.Sprintf("directory returned status %d", statusCode), CodeServer, statusCode, context),
		RetryAfter: retryAfter,
	}
}

// DecodeError covers a malformed envelope and an envelope without results.
type DecodeError struct {
	*AppError
}

// NewDecodeError wraps an unusable response body.
func NewDecodeError(message string, cause error) *DecodeError {
	return &DecodeError{
		AppError: NewAppError(message, CodeDecode, 0, nil).WithCause(cause),
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

// NewCacheError wraps a store backend failure for operation on key.
func NewCacheError(message, operation, key string, cause error) *CacheError {
	ctx := map[string]any{"operation": operation, "key": key}
	return &CacheError{
		AppError:  NewAppError(message, CodeCache, 0, ctx).WithCause(cause),
		Operation: operation,
		Key:       key,
	}
}

// Kind reports the code of the first AppError-derived error in err's chain.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var transportErr *TransportError
	if stderrors.As(err, &transportErr) {
		return CodeTransport
	}
	var serverErr *ServerError
	if stderrors.As(err, &serverErr) {
		return CodeServer
	}
	var decodeErr *DecodeError
	if stderrors.As(err, &decodeErr) {
		return CodeDecode
	}
	var cacheErr *CacheError
	if stderrors.As(err, &cacheErr) {
		return CodeCache
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return CodeUnknown
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Decode failures are treated as permanent.
func IsRetryable(err error) bool {
	switch Kind(err) {
	case CodeTransport:
		return true
	case CodeServer:
		var serverErr *ServerError
		if stderrors.As(err, &serverErr) {
			return serverErr.StatusCode == 429 || serverErr.StatusCode >= 500
		}
		return false
	default:
		return false
	}
}
