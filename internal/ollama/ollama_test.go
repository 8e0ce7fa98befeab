// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama API.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient points a client at a test server with fast retries.
func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		wantRole string
	}{
		{"user", NewUserMessage("Hello"), "user"},
		{"assistant", NewAssistantMessage("Hi"), "assistant"},
		{"system", NewSystemMessage("Be helpful"), "system"},
		{"tool", NewToolResultMessage("output"), "tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.msg.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", tt.msg.Role, tt.wantRole)
			}
			if tt.msg.Content == "" {
				t.Error("Content should not be empty")
			}
		})
	}
}

func TestMessage_HasToolCalls(t *testing.T) {
	msg := NewAssistantMessage("Response")
	if msg.HasToolCalls() {
		t.Error("HasToolCalls should be false without tool calls")
	}

	msg = NewAssistantMessageWithTools("", []ToolCall{
		{Function: ToolFunction{Name: "list_files"}},
	})
	if !msg.HasToolCalls() {
		t.Error("HasToolCalls should be true with tool calls")
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() = %v, want nil", err)
	}
}

func TestCheckRunning_NotRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := newTestClient(server.URL)
	err := client.CheckRunning(context.Background())
	if err == nil {
		t.Fatal("CheckRunning() = nil, want error")
	}
	if !IsNotRunning(err) {
		t.Errorf("IsNotRunning(%v) = false, want true", err)
	}
}

func TestCheckRunning_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.CheckRunning(context.Background()); err == nil {
		t.Error("CheckRunning() = nil, want error for 500 status")
	}
}

// =============================================================================
// MODEL LISTING TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListModelsResponse{
			Models: []ModelInfo{
				{Name: "llama3.2", Size: 2 * 1024 * 1024 * 1024},
				{Name: "qwen2.5:7b", Size: 4 * 1024 * 1024 * 1024},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}

	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].Name != "llama3.2" {
		t.Errorf("models[0].Name = %q, want 'llama3.2'", models[0].Name)
	}
	if models[0].FormatSize() != "2 GB" {
		t.Errorf("FormatSize() = %q, want '2 GB'", models[0].FormatSize())
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChatWithTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "llama3.2" {
			t.Errorf("request model = %q, want 'llama3.2'", req.Model)
		}
		if req.Stream {
			t.Error("request should not be streaming")
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "list_files" {
			t.Errorf("tools not forwarded: %+v", req.Tools)
		}

		json.NewEncoder(w).Encode(ChatResponse{
			Model: "llama3.2",
			Message: Message{
				Role: "assistant",
				ToolCalls: []ToolCall{
					{Function: ToolFunction{
						Name:      "list_files",
						Arguments: map[string]interface{}{"directory": "."},
					}},
				},
			},
			Done: true,
		})
	}))
	defer server.Close()

	tools := []Tool{
		{
			Type: "function",
			Function: ToolSchema{
				Name:        "list_files",
				Description: "List files in a directory",
				Parameters: ToolParameters{
					Type: "object",
					Properties: map[string]ToolProperty{
						"directory": {Type: "string", Description: "Directory to list"},
					},
					Required: []string{"directory"},
				},
			},
		},
	}

	client := newTestClient(server.URL)
	resp, err := client.ChatWithTools(context.Background(), "llama3.2",
		[]Message{NewUserMessage("What files are here?")}, tools, nil)
	if err != nil {
		t.Fatalf("ChatWithTools() error: %v", err)
	}

	if !resp.Message.HasToolCalls() {
		t.Fatal("response should carry tool calls")
	}
	call := resp.Message.ToolCalls[0]
	if call.Function.Name != "list_files" {
		t.Errorf("call name = %q, want 'list_files'", call.Function.Name)
	}
	if call.Function.Arguments["directory"] != "." {
		t.Errorf("call directory = %v, want '.'", call.Function.Arguments["directory"])
	}
}

func TestChat_DefaultModel(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		json.NewEncoder(w).Encode(ChatResponse{
			Message: NewAssistantMessage("hi"),
			Done:    true,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Chat(context.Background(), "", []Message{NewUserMessage("hi")}); err != nil {
		t.Fatalf("Chat() error: %v", err)
	}

	if gotModel != client.GetDefaultModel() {
		t.Errorf("model = %q, want default %q", gotModel, client.GetDefaultModel())
	}
}

func TestChat_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Chat(context.Background(), "missing", []Message{NewUserMessage("hi")})
	if err == nil {
		t.Fatal("Chat() = nil error, want model not found")
	}
	if !IsModelNotFound(err) {
		t.Errorf("IsModelNotFound(%v) = false, want true", err)
	}
}

func TestChat_APIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIError{Error: "model requires more system memory"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Chat(context.Background(), "llama3.2", []Message{NewUserMessage("hi")})
	if err == nil {
		t.Fatal("Chat() = nil error, want API error")
	}
	if err.Error() != "model requires more system memory" {
		t.Errorf("error = %q, want the API's message", err.Error())
	}
}

func TestChat_StatusNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.Chat(context.Background(), "llama3.2", []Message{NewUserMessage("hi")})

	// Only transport failures retry; an HTTP error status must not
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(nil)
	cfg := client.GetConfig()

	if cfg.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.DefaultModel != "llama3.2" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
}

func TestNewClientWithConfig_PartialFill(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://10.0.0.5:11434"})
	cfg := client.GetConfig()

	if cfg.BaseURL != "http://10.0.0.5:11434" {
		t.Errorf("BaseURL = %q, custom value lost", cfg.BaseURL)
	}
	if cfg.Timeout == 0 || cfg.RetryDelay == 0 {
		t.Error("zero config fields should be filled with defaults")
	}
}

// =============================================================================
// RESPONSE METRIC TESTS
// =============================================================================

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
		{"fast", 1000, int64(100 * time.Millisecond), 10000.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ChatResponse{EvalCount: tc.evalCount, EvalDuration: tc.evalDuration}
			got := resp.TokensPerSecond()

			if tc.want != 0 && (got < tc.want*0.99 || got > tc.want*1.01) {
				t.Errorf("TokensPerSecond() = %f, want %f", got, tc.want)
			}
			if tc.want == 0 && got != 0 {
				t.Errorf("TokensPerSecond() = %f, want 0", got)
			}
		})
	}
}

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "0.5 KB"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1 MB"},
		{2 * 1024 * 1024 * 1024, "2 GB"},
	}

	for _, tc := range tests {
		m := &ModelInfo{Size: tc.size}
		if got := m.FormatSize(); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}
