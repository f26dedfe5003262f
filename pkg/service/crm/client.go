package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/secmon-lab/talentbridge/pkg/utils/safe"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://api.hubapi.com"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 2
	DefaultBackoff    = 500 * time.Millisecond

	// maxResponseSize bounds how much of a response body is read
	maxResponseSize = 8 << 20
)

// Client is the single outbound path to the CRM. Every call gets bearer
// auth, a per-call timeout, rate limiting and retry of transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the deadline applied to each individual attempt
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit limits outbound calls to perSecond with the given burst
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetry sets how many times a transient failure is retried and the
// initial backoff, doubled on each attempt
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method string
	path   string
	token  string
	query  url.Values
	body   any
	// create marks a request the CRM may have applied even when no
	// response arrived. It is retried only on 429 and failed dials.
	create bool
}

// errorResponse is the error document returned by the CRM API
type errorResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

// do executes req and decodes a successful response into out (if non-nil).
// Failures map to model.ErrNetwork, model.ErrRemoteUnauthorized or
// model.ErrRemoteValidation.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload []byte
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request body", goerr.V("path", req.path))
		}
		payload = raw
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			logging.From(ctx).Debug("retrying CRM request",
				"method", req.method, "path", req.path, "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return goerr.Wrap(model.ErrNetwork, "request abandoned while waiting to retry",
					goerr.V("path", req.path), goerr.V("error", ctx.Err().Error()))
			case <-time.After(wait):
			}
		}

		retryable, err := c.attempt(ctx, req, endpoint, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, req request, endpoint string, payload []byte, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, goerr.Wrap(model.ErrNetwork, "rate limiter wait aborted",
			goerr.V("path", req.path), goerr.V("error", err.Error()))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(callCtx, req.method, endpoint, body)
	if err != nil {
		return false, goerr.Wrap(err, "failed to build CRM request", goerr.V("path", req.path))
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded)
		return !req.create || isDialError(err), goerr.Wrap(model.ErrNetwork, "CRM request failed",
			goerr.V("method", req.method), goerr.V("path", req.path),
			goerr.V("timeout", timeout), goerr.V("error", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return !req.create, goerr.Wrap(model.ErrNetwork, "failed to read CRM response",
			goerr.V("path", req.path), goerr.V("error", err.Error()))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return false, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return false, goerr.Wrap(err, "failed to decode CRM response",
				goerr.V("path", req.path), goerr.V(model.StatusCodeKey, resp.StatusCode))
		}
		return false, nil
	}

	retryable, err := classifyStatus(req, resp.StatusCode, raw)
	if req.create && resp.StatusCode != http.StatusTooManyRequests {
		retryable = false
	}
	return retryable, err
}

// isDialError reports whether the request failed before a connection was
// established, so the CRM never saw it
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// classifyStatus turns a non-2xx response into a taxonomy error and reports
// whether it is worth retrying
func classifyStatus(req request, code int, raw []byte) (bool, error) {
	var er errorResponse
	_ = json.Unmarshal(raw, &er)
	msg := er.Message
	if msg == "" {
		msg = http.StatusText(code)
	}

	values := []goerr.Option{
		goerr.V("method", req.method),
		goerr.V("path", req.path),
		goerr.V(model.StatusCodeKey, code),
		goerr.V(model.RemoteMsgKey, msg),
	}
	if er.Category != "" {
		values = append(values, goerr.V("category", er.Category))
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return false, goerr.Wrap(model.ErrRemoteUnauthorized, msg, values...)
	case code == http.StatusTooManyRequests || code >= 500:
		return true, goerr.Wrap(model.ErrNetwork, msg, values...)
	default:
		return false, goerr.Wrap(model.ErrRemoteValidation, msg, values...)
	}
}
