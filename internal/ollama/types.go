// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama API.
package ollama

import (
	"strings"
	"time"

	"github.com/jeranaias/fscout/internal/util"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the conversation.
type Message struct {
	Role      string     `json:"role"`                 // "user", "assistant", "system", "tool"
	Content   string     `json:"content"`              // The message content
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // Tool calls requested by assistant
}

// ToolCall represents a tool invocation from the model.
type ToolCall struct {
	Function ToolFunction `json:"function"`
}

// ToolFunction contains the function name and arguments.
type ToolFunction struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   string    `json:"format,omitempty"`
	Options  *Options  `json:"options,omitempty"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// Tool represents a tool definition for function calling.
type Tool struct {
	Type     string     `json:"type"` // Always "function"
	Function ToolSchema `json:"function"`
}

// ToolSchema defines a tool's interface.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is the JSON Schema object describing a tool's parameters.
type ToolParameters struct {
	Type       string                  `json:"type"` // "object"
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty defines a single parameter property using JSON Schema.
type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Options contains model parameters for inference.
type Options struct {
	Temperature float64  `json:"temperature,omitempty"` // 0.0-2.0, default 0.8
	TopK        int      `json:"top_k,omitempty"`       // Default 40
	TopP        float64  `json:"top_p,omitempty"`       // 0.0-1.0, default 0.9
	NumCtx      int      `json:"num_ctx,omitempty"`     // Context window size
	NumPredict  int      `json:"num_predict,omitempty"` // Max tokens to generate
	Seed        int      `json:"seed,omitempty"`        // Random seed
	Stop        []string `json:"stop,omitempty"`        // Stop sequences
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the response from the /api/chat endpoint.
type ChatResponse struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Message            Message   `json:"message"`
	Done               bool      `json:"done"`
	DoneReason         string    `json:"done_reason,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty"`       // nanoseconds
	LoadDuration       int64     `json:"load_duration,omitempty"`        // nanoseconds
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty"`    // tokens in prompt
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty"` // nanoseconds
	EvalCount          int       `json:"eval_count,omitempty"`           // tokens generated
	EvalDuration       int64     `json:"eval_duration,omitempty"`        // nanoseconds
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo contains information about an installed model.
type ModelInfo struct {
	Name       string       `json:"name"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details,omitempty"`
}

// ModelDetails contains detailed information about a model.
type ModelDetails struct {
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ShowModelRequest is the request for the /api/show endpoint.
type ShowModelRequest struct {
	Name string `json:"name"`
}

// ShowModelResponse is the response from the /api/show endpoint.
type ShowModelResponse struct {
	License    string       `json:"license"`
	Modelfile  string       `json:"modelfile"`
	Parameters string       `json:"parameters"`
	Template   string       `json:"template"`
	Details    ModelDetails `json:"details"`
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// APIError is the error body Ollama returns on failed requests.
type APIError struct {
	Error string `json:"error"`
}

// =============================================================================
// HELPER METHODS
// =============================================================================

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// NewToolResultMessage creates a tool result message.
func NewToolResultMessage(content string) Message {
	return Message{Role: "tool", Content: content}
}

// NewAssistantMessageWithTools creates an assistant message with tool calls.
func NewAssistantMessageWithTools(content string, toolCalls []ToolCall) Message {
	return Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
	}
}

// HasToolCalls returns true if the message contains tool calls.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// TokensPerSecond calculates the generation speed from a response.
func (r *ChatResponse) TokensPerSecond() float64 {
	if r.EvalDuration == 0 {
		return 0
	}
	seconds := float64(r.EvalDuration) / 1e9
	return float64(r.EvalCount) / seconds
}

// TTFT returns the time to first token (prompt evaluation time).
func (r *ChatResponse) TTFT() time.Duration {
	return time.Duration(r.PromptEvalDuration)
}

// TotalTime returns the total generation time.
func (r *ChatResponse) TotalTime() time.Duration {
	return time.Duration(r.TotalDuration)
}

// FormatSize formats the model size in human-readable form.
func (m *ModelInfo) FormatSize() string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case m.Size >= GB:
		return formatFloat(float64(m.Size)/GB) + " GB"
	case m.Size >= MB:
		return formatFloat(float64(m.Size)/MB) + " MB"
	case m.Size >= KB:
		return formatFloat(float64(m.Size)/KB) + " KB"
	default:
		return util.Int64ToString(m.Size) + " B"
	}
}

// formatFloat renders with one decimal place, dropping a trailing .0.
func formatFloat(f float64) string {
	return strings.TrimSuffix(util.FloatToStringPrec(f, 1), ".0")
}
