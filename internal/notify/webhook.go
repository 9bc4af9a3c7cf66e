// Package notify delivers job outcome notifications to external
// webhooks. It defines the Notifier port and an HTTP implementation
// with exponential backoff retry.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blackbarhq/blackbar/internal/detect"
)

// Static errors for webhook delivery.
var (
	// ErrURLRequired is returned when the webhook URL is not provided.
	ErrURLRequired = errors.New("notify: webhook URL is required")
	// ErrServerError is returned when the receiver returns a 5xx status code.
	ErrServerError = errors.New("notify: server error")
	// ErrRateLimited is returned when the receiver returns a 429 status code.
	ErrRateLimited = errors.New("notify: rate limited")
	// ErrRequestFailed is returned when delivery fails with a non-2xx status code.
	ErrRequestFailed = errors.New("notify: request failed")
)

// Event is the payload delivered to a webhook when a job reaches a
// terminal state.
type Event struct {
	JobID       string            `json:"job_id"`
	Input       string            `json:"input"`
	Status      string            `json:"status"`
	Crop        *detect.Rectangle `json:"crop,omitempty"`
	Error       string            `json:"error,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Notifier delivers job outcome events.
type Notifier interface {
	// Notify delivers one event to the given webhook URL.
	Notify(ctx context.Context, url string, event Event) error
}

// WebhookClient is the HTTP implementation of the Notifier interface.
type WebhookClient struct {
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures a WebhookClient.
type ClientOption func(*WebhookClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(wc *WebhookClient) {
		wc.httpClient = c
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(wc *WebhookClient) {
		wc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(wc *WebhookClient) {
		wc.baseBackoff = d
	}
}

// NewWebhookClient creates a new webhook Notifier.
func NewWebhookClient(opts ...ClientOption) *WebhookClient {
	c := &WebhookClient{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Notify POSTs the event as JSON to url, retrying transient failures
// with exponential backoff.
func (c *WebhookClient) Notify(ctx context.Context, url string, event Event) error {
	if url == "" {
		return ErrURLRequired
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}

	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("notify: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		err := c.post(ctx, url, body)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("notify: max retries exceeded: %w", lastErr)
}

// post performs a single delivery attempt.
func (c *WebhookClient) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("notify: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("notify: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 5xx errors are retryable
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		// 429 (rate limit) is retryable
		if resp.StatusCode == 429 {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	return nil
}

// retryableError marks an error as safe to retry.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable checks if an error should trigger a retry.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Compile-time check that WebhookClient implements Notifier.
var _ Notifier = (*WebhookClient)(nil)
