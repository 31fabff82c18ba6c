package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/flightdesk/flightdesk/internal/ratelimit"
)

// Upstream service names used for rate limiting and error reporting.
const (
	ServiceFlights  = "flights"
	ServiceBookings = "bookings"
	ServicePayments = "payments"
)

// Error wraps a failure from one upstream service.
type Error struct {
	Service string
	Err     error
}

func (e *Error) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(service string, err error) *Error {
	return &Error{
		Service: service,
		Err:     err,
	}
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.ServiceLimiter
}

// Client is the transport shared by all upstream collaborators: per-call
// timeout, per-service rate limiting and bounded retry with backoff.
// Retries cover transport errors and 5xx responses only; 4xx responses are
// final.
type Client struct {
	httpClient *http.Client
	config     Config
}

func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
	}
}

// doJSON performs one JSON request/response round trip against a service and
// decodes the body into out (unless out is nil).
func (c *Client) doJSON(ctx context.Context, service, method, url string, headers map[string]string, body, out any) error {
	if c.config.RateLimiter != nil {
		if err := c.config.RateLimiter.Wait(ctx, service); err != nil {
			return NewError(service, err)
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return NewError(service, err)
		}
	}

	data, err := c.withRetry(ctx, service, func() ([]byte, error) {
		return c.roundTrip(ctx, method, url, headers, payload)
	})
	if err != nil {
		return NewError(service, err)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewError(service, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, url string, headers map[string]string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: upstreamMessage(data)}
	}

	return data, nil
}

func (c *Client) withRetry(ctx context.Context, service string, call func() ([]byte, error)) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(c.config.RetryDelays) {
				delayIdx = len(c.config.RetryDelays) - 1
			}
			delay := 100 * time.Millisecond
			if delayIdx >= 0 && delayIdx < len(c.config.RetryDelays) {
				delay = c.config.RetryDelays[delayIdx]
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := call()
		if err == nil {
			return data, nil
		}
		if !retriable(err) {
			return nil, err
		}

		lastErr = err
		log.Printf("Upstream %s attempt %d failed: %v", service, attempt+1, err)
	}

	return nil, lastErr
}

func retriable(err error) bool {
	if statusErr, ok := err.(*StatusError); ok {
		return statusErr.StatusCode >= 500
	}
	return true
}

// upstreamMessage pulls the human-readable message out of an error body, if
// there is one.
func upstreamMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
