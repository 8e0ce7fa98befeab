// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// IsModelNotFound checks if an error is a model not found error.
func IsModelNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeModelNotFound
	}
	return errors.Is(err, ErrModelNotFound)
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for a single request. Chat calls on modest hardware can
	// take a while, so the default is generous (default: 120s)
	Timeout time.Duration

	// DefaultModel to use if none specified (default: "llama3.2")
	DefaultModel string

	// MaxRetries for transient connection failures (default: 3)
	MaxRetries int

	// RetryDelay between retries (default: 1s)
	RetryDelay time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://127.0.0.1:11434",
		Timeout:      120 * time.Second,
		DefaultModel: "llama3.2",
		MaxRetries:   3,
		RetryDelay:   1 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
// It provides methods for health checks, model listing, and tool-calling
// chat completions.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := ollama.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    log.Fatal("Ollama not available:", err)
//	}
//	resp, err := client.Chat(ctx, "llama3.2", messages)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.DefaultModel == "" {
		config.DefaultModel = defaults.DefaultModel
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaults.RetryDelay
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// SetModel updates the default model.
func (c *Client) SetModel(model string) {
	c.config.DefaultModel = model
}

// GetDefaultModel returns the current default model.
func (c *Client) GetDefaultModel() string {
	return c.config.DefaultModel
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable. No retries here so the
// check fails fast; callers wanting a short deadline pass one via ctx.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}

	return nil
}

// EnsureRunning checks if Ollama is running, and starts it if not. The
// actual start logic is platform-specific (see start_unix.go and
// start_windows.go).
func (c *Client) EnsureRunning(ctx context.Context) error {
	if err := c.CheckRunning(ctx); err == nil {
		return nil
	}
	return c.startServer(ctx)
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all locally installed models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return result.Models, nil
}

// GetModel retrieves information about a specific model.
func (c *Client) GetModel(ctx context.Context, name string) (*ShowModelResponse, error) {
	resp, err := c.post(ctx, "/api/show", ShowModelRequest{Name: name})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to get model: " + resp.Status,
		}
	}

	var result ShowModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// ModelExists checks if a model is available locally.
func (c *Client) ModelExists(ctx context.Context, model string) bool {
	_, err := c.GetModel(ctx, model)
	return err == nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends a chat request and returns the complete response.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (*ChatResponse, error) {
	return c.ChatWithTools(ctx, model, messages, nil, nil)
}

// ChatWithTools sends a chat request with tool definitions and returns
// the complete response. Tool calling needs the whole assistant message
// before any tool can run, so requests are non-streaming.
func (c *Client) ChatWithTools(ctx context.Context, model string, messages []Message, tools []Tool, opts *Options) (*ChatResponse, error) {
	if model == "" {
		model = c.config.DefaultModel
	}

	reqBody := ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  opts,
		Tools:    tools,
	}

	resp, err := c.post(ctx, "/api/chat", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		// Prefer the error message Ollama put in the body
		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, &ClientError{
				Type:    ErrTypeInvalidResponse,
				Message: apiErr.Error,
			}
		}
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "chat request failed: " + resp.Status,
		}
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

// get issues a GET request with connection retries.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

// post marshals reqBody and issues a POST request with connection
// retries.
func (c *Client) post(ctx context.Context, path string, reqBody interface{}) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}
	return c.send(ctx, http.MethodPost, path, body)
}

// send issues the request, retrying transport-level failures up to
// MaxRetries times. HTTP status codes are never retried; only the
// connection itself. Context cancellation stops the retry loop.
func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ErrTimeout
			case <-time.After(c.config.RetryDelay):
			}
		}

		var reader *bytes.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		lastErr = err
	}

	return nil, &ClientError{
		Type:    ErrTypeNotRunning,
		Message: "Ollama is not running",
		Cause:   lastErr,
	}
}
