// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the cloud API client.
const (
	// DefaultBaseURL is the base URL for the OpenAI API. Any service that
	// speaks the same wire format works here.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the model used when the caller does not pick one.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// DefaultRequestsPerMinute is the default client-side rate limit.
	DefaultRequestsPerMinute = 60

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// defaultRateBurst allows short bursts of back-to-back requests, which
	// agentic loops produce when a turn resolves several tool calls.
	defaultRateBurst = 5

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// userAgent identifies fscout in outgoing requests.
	userAgent = "fscout/0.1.0"
)

// sharedTransport pools connections across all cloud clients.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Error variables for common cloud API errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("cloud API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrQuotaExceeded indicates the account has run out of credits.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// APIError represents an error returned by the cloud API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cloud API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("cloud API error (HTTP %d): %s", e.Status, e.Message)
}

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new cloud client with the given API key.
//
// If the API key is empty, the client is still created but requests fail
// with ErrNotConfigured. The config layer resolves the key from the
// environment; this package never reads environment variables itself.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/DefaultRequestsPerMinute), defaultRateBurst),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit caps outgoing requests to the given number per minute.
// A value of zero or less disables client-side rate limiting.
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), defaultRateBurst)
	return c
}

// SetModel sets the model to use for chat requests.
// Not safe for concurrent use; configure the client before sharing it.
func (c *Client) SetModel(model string) {
	c.model = model
}

// GetModel returns the current model.
func (c *Client) GetModel() string {
	return c.model
}

// GetBaseURL returns the configured base URL.
func (c *Client) GetBaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
// It never exposes key fragments; a hash fingerprint identifies the key.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.keyFingerprint())
}

// keyFingerprint returns a short SHA-256 fingerprint of the API key.
func (c *Client) keyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// Chat performs a chat completion request with the given messages.
//
// It retries transient failures with exponential backoff. Rate limiting
// and 5xx responses retry; auth failures and quota exhaustion do not.
func (c *Client) Chat(ctx context.Context, messages []Message) (*ChatResponse, error) {
	return c.ChatWithTools(ctx, messages, nil)
}

// ChatWithTools performs a chat completion request advertising the given
// tool schemas. The model may answer with content, tool calls, or both.
func (c *Client) ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (*ChatResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	reqBody := ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Tools:    tools,
	}

	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		response, err := c.doRequest(ctx, reqBody)
		if err != nil {
			if c.isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		return response, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, errors.New("max retries exceeded")
}

// doRequest performs a single HTTP request to the chat completions endpoint.
func (c *Client) doRequest(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	// Client-side rate limiting keeps bursts from tripping server limits.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &chatResp, nil
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Hitting the limit exactly means the response was truncated.
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// handleErrorResponse converts HTTP error responses to appropriate Go errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		cloudErr := &APIError{
			Code:    apiErr.Error.Code,
			Message: apiErr.Error.Message,
			Status:  statusCode,
		}

		switch {
		case statusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrAuthFailed, cloudErr.Message)
		case apiErr.Error.Code == "insufficient_quota":
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, cloudErr.Message)
		case statusCode == http.StatusNotFound || apiErr.Error.Code == "model_not_found":
			return fmt.Errorf("%w: %s", ErrModelNotFound, cloudErr.Message)
		case statusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, cloudErr.Message)
		default:
			return cloudErr
		}
	}

	// Fallback for unparseable error responses.
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			Message: strings.TrimSpace(string(body)),
			Status:  statusCode,
		}
	}
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	// Never retry a cancelled or expired context.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	// 5xx responses are transient.
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}

	// Connection failures are worth another attempt.
	var netErr net.Error
	return errors.As(err, &netErr)
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// ListModels retrieves the list of models available to the API key.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var modelsResp modelsResponse
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		return nil, fmt.Errorf("failed to parse models response: %w", err)
	}

	return modelsResp.Data, nil
}

// ModelExists checks if the given model is available to the API key.
func (c *Client) ModelExists(ctx context.Context, model string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.ID == model {
			return true, nil
		}
	}
	return false, nil
}

// ValidateAPIKey checks if the API key format appears valid.
// Note: this doesn't verify the key with the server, just checks the format.
func ValidateAPIKey(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)

	// OpenAI-style keys start with "sk-".
	if !strings.HasPrefix(apiKey, "sk-") {
		return false
	}

	// Minimum length check (sk- prefix plus a meaningful body).
	if len(apiKey) < 24 {
		return false
	}

	// Count unique characters to detect obvious placeholders like "sk-aaaa...".
	uniqueChars := make(map[rune]bool)
	for _, char := range apiKey[3:] {
		uniqueChars[char] = true
	}

	return len(uniqueChars) >= 10
}
