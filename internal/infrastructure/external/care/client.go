// Package care implements the client of the remote care service, which
// owns counselling appointments and assessment results.
package care

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/assessment"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/pkg/circuitbreaker"
	"github.com/campuscare/wellness-hub/pkg/logger"
	"github.com/campuscare/wellness-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the care service client.
type ClientConfig struct {
	// BaseURL is the care service base URL, e.g. "https://care.example.edu/api".
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// MaxAttempts is the number of tries for retryable failures.
	MaxAttempts int

	// BreakerThreshold is the number of consecutive failures that open the circuit.
	BreakerThreshold int

	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration

	// MaxBodyBytes caps the response size read into memory.
	MaxBodyBytes int64
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		MaxAttempts:      3,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
		MaxBodyBytes:     4 << 20,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the care service.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	log        *logger.Logger
	breaker    *circuitbreaker.CircuitBreaker
	retrier    *retry.Retrier
}

// NewClient creates a care service client.
func NewClient(config ClientConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultClientConfig("").MaxBodyBytes
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	log = log.With(logger.Component("care_client"))

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log,
	}

	c.breaker = circuitbreaker.CareAPIBreaker(
		config.BreakerThreshold,
		config.BreakerCooldown,
		countsAgainstService,
		func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	)
	c.retrier = retry.CareAPIRetrier(config.MaxAttempts, func(attempt int, err error, delay time.Duration) {
		log.Debug("retrying care service request",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})

	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchAppointments returns every appointment of a student, in payload order.
// The service must answer with a JSON array; any other shape fails with
// shared.ErrInvalidResponseShape.
func (c *Client) FetchAppointments(ctx context.Context, studentID string) ([]appointment.Appointment, error) {
	path := "/appointments/student/" + url.PathEscape(studentID)

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if !isJSONArray(body) {
		return nil, shared.ErrAppointmentsShape
	}

	var list []appointment.Appointment
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, shared.WrapError("appointment", "Fetch", shared.ErrInvalidResponseShape, "decode appointments", err)
	}
	if list == nil {
		list = []appointment.Appointment{}
	}
	return list, nil
}

// FetchAssessments returns the most recent assessment results of a student.
// A missing "tests" field yields an empty list.
func (c *Client) FetchAssessments(ctx context.Context, studentID string, limit int) ([]assessment.Result, error) {
	if limit <= 0 {
		limit = assessment.DefaultLimit
	}
	path := "/tests/results/" + url.PathEscape(studentID) + "?limit=" + strconv.Itoa(limit)

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env assessment.ResultsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, shared.WrapError("assessment", "Fetch", shared.ErrInvalidResponseShape, "decode results", err)
	}
	if env.Tests == nil {
		env.Tests = []assessment.Result{}
	}
	return env.Tests, nil
}

// BreakerState reports the circuit state, for readiness checks.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs a request with circuit breaking and retries and returns
// the raw body of a 2xx response.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	start := time.Now()
	var out []byte

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			b, err := c.doSingleRequest(ctx, method, path, body)
			if err != nil {
				return classify(err)
			}
			out = b
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			err = shared.WrapError("care", "Request", shared.ErrServiceUnavailable, "care service unavailable", err)
		}
		c.log.Warn("care service request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
		return nil, err
	}

	c.log.Debug("care service request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Latency(time.Since(start)),
	)
	return out, nil
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, shared.WrapError("care", "Request", shared.ErrCareAPITimeout, "http request", err)
		}
		return nil, shared.WrapError("care", "Request", shared.ErrNetwork, "http request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, shared.WrapError("care", "Request", shared.ErrNetwork, "read response", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Code    string `json:"code"`
		}
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Message = payload.Message
			if apiErr.Message == "" {
				apiErr.Message = payload.Error
			}
			apiErr.Code = payload.Code
		}
		return nil, apiErr
	}

	return respBody, nil
}

// classify marks an error for the retrier.
func classify(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Temporary() {
			return retry.Retryable(err)
		}
		return retry.Permanent(err)
	}
	if errors.Is(err, context.Canceled) {
		return retry.Permanent(err)
	}
	if shared.IsRetryable(err) {
		return retry.Retryable(err)
	}
	return retry.Permanent(err)
}

// countsAgainstService reports whether err indicates the service itself is
// unhealthy. Client errors and shape errors do not trip the breaker.
func countsAgainstService(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return shared.IsRetryable(err)
}

// isTimeout reports whether a transport error came from a deadline, either
// the http.Client timeout or the context's.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// isJSONArray reports whether body is a JSON array, ignoring leading space.
func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
