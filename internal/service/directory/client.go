// Package directory fetches single profiles from the random-person directory.
package directory

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/randomuser-swipe-go/internal/constants"
	"github.com/kapu/randomuser-swipe-go/internal/domain"
	"github.com/kapu/randomuser-swipe-go/internal/service/mapper"
	"github.com/kapu/randomuser-swipe-go/internal/util"
	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

// maxBodyBytes bounds how much of a response is read; one record is a few KB.
const maxBodyBytes = 1 << 20

var errMissingHost = stderrors.New("directory url needs a scheme and host")

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

type Option func(*Client)

// WithCircuitBreaker makes FetchOne fail fast while the breaker is open.
func WithCircuitBreaker(cb *util.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// NewClient creates a directory client. A nil httpClient gets the default timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns the http.Client used against the directory. A
// non-positive timeout falls back to the default.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = constants.APIConfig.DirectoryTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// FetchOne issues exactly one request and maps the first result. It does not retry.
// Errors are *errors.TransportError, *errors.ServerError or *errors.DecodeError.
func (c *Client) FetchOne(ctx context.Context) (*domain.Profile, error) {
	reqURL, err := c.requestURL()
	if err != nil {
		return nil, errors.NewTransportError("invalid directory url", c.baseURL, err)
	}

	if c.breaker != nil && !c.breaker.CanExecute() {
		retryAt := c.breaker.NextRetryTime()
		c.logger.Warn("Directory circuit open, skipping request", zap.Time("retry_at", retryAt))
		transportErr := errors.NewTransportError("directory circuit open", reqURL, nil)
		transportErr.Context["retry_at"] = retryAt
		return nil, transportErr
	}

	body, err := c.get(ctx, reqURL)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	c.recordSuccess()

	var envelope domain.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.NewDecodeError("malformed directory envelope", err)
	}

	if len(envelope.Results) == 0 {
		return nil, errors.NewDecodeError("directory envelope has no results", nil)
	}

	profile := mapper.Map(envelope.Results[0])
	c.logger.Debug("Profile fetched",
		zap.String("profile_id", profile.ID),
		zap.String("nat", profile.Nationality),
	)
	return &profile, nil
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &url.Error{Op: "parse", URL: c.baseURL, Err: errMissingHost}
	}

	q := u.Query()
	q.Set("results", "1")
	q.Set("noinfo", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewTransportError("failed to create request", reqURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Directory request failed", zap.String("url", reqURL), zap.Error(err))
		return nil, errors.NewTransportError("request failed", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.Warn("Directory returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.Duration("retry_after", retryAfter),
		)
		return nil, errors.NewServerError(resp.StatusCode, retryAfter, map[string]any{
			"url":  reqURL,
			"body": string(snippet),
		})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewTransportError("failed to read response", reqURL, err)
	}
	return body, nil
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}

func (c *Client) recordFailure(err error) {
	if c.breaker == nil {
		return
	}
	var timeout time.Duration
	var serverErr *errors.ServerError
	if stderrors.As(err, &serverErr) {
		timeout = serverErr.RetryAfter
	}
	c.breaker.RecordFailure(timeout)
}

// parseRetryAfter understands the delta-seconds form and the HTTP-date form.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}
