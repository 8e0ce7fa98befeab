// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import "encoding/json"

// Message represents a single message in the OpenAI chat wire format.
type Message struct {
	Role       string     `json:"role"`    // "system", "user", "assistant", or "tool"
	Content    string     `json:"content"` // The message content
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // Set on "tool" role messages
}

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

// NewToolResultMessage creates a tool result message answering the tool
// call with the given ID.
func NewToolResultMessage(toolCallID, content string) Message {
	return Message{Role: "tool", Content: content, ToolCallID: toolCallID}
}

// NewAssistantMessageWithTools creates an assistant message carrying tool
// calls, as echoed back to the API on subsequent turns.
func NewAssistantMessageWithTools(content string, toolCalls []ToolCall) Message {
	return Message{Role: "assistant", Content: content, ToolCalls: toolCalls}
}

// HasToolCalls returns true if the message contains tool calls.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // Always "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function to invoke. Arguments is a JSON-encoded
// object, not a nested structure; this is how the OpenAI API ships it.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ArgumentsMap decodes the JSON-encoded arguments into a map. An empty
// arguments string decodes to an empty map.
func (f FunctionCall) ArgumentsMap() (map[string]interface{}, error) {
	if f.Arguments == "" {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(f.Arguments), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// Tool describes a function the model may call.
type Tool struct {
	Type     string     `json:"type"` // Always "function"
	Function ToolSchema `json:"function"`
}

// ToolSchema describes a function schema advertised to the model.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is the JSON Schema for a function's parameters.
type ToolParameters struct {
	Type       string                  `json:"type"` // Always "object"
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty describes a single function parameter.
type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// ChatRequest represents a request to the chat completions endpoint.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Tools       []Tool    `json:"tools,omitempty"`
}

// Choice is a single completion choice in a chat response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token accounting for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse represents a response from the chat completions endpoint.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// GetContent returns the content of the first choice, or empty string if none.
func (r *ChatResponse) GetContent() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	return ""
}

// GetToolCalls returns the tool calls of the first choice, or nil if none.
func (r *ChatResponse) GetToolCalls() []ToolCall {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.ToolCalls
	}
	return nil
}

// HasToolCalls returns true if the first choice requested tool calls.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.GetToolCalls()) > 0
}

// FinishReason returns the finish reason of the first choice, or empty
// string if none. "tool_calls" means the model stopped to invoke tools.
func (r *ChatResponse) FinishReason() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].FinishReason
	}
	return ""
}

// ModelInfo represents a model listed by the models endpoint.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
	Created int64  `json:"created"`
}

// modelsResponse is the internal response structure for listing models.
type modelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// apiErrorResponse represents an error response from the API.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
