// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the file inspection toolset for fscout.
// agentic.go drives the model/tool conversation loop: the model answers
// or requests tool calls, results flow back as tool messages, and the
// loop repeats until a final answer or a safety limit.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxIterations caps model round-trips per question.
	DefaultMaxIterations = 10

	// DefaultMaxConsecutiveErrors stops the loop when every tool call
	// fails this many iterations in a row.
	DefaultMaxConsecutiveErrors = 3

	// DefaultLoopTimeout is the wall-clock budget for one Run.
	DefaultLoopTimeout = 10 * time.Minute
)

// Loop termination errors. Callers match with errors.Is to explain the
// stop to the user.
var (
	// ErrMaxIterationsReached means the loop hit its iteration cap
	// before the model produced a final answer.
	ErrMaxIterationsReached = errors.New("maximum iterations reached")

	// ErrContextCancelled means the surrounding context was cancelled.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrLoopTimeout means the conversation ran past its wall-clock
	// budget.
	ErrLoopTimeout = errors.New("agentic loop timeout")

	// ErrConsecutiveToolFailures means every tool call failed in too
	// many consecutive iterations.
	ErrConsecutiveToolFailures = errors.New("too many consecutive tool failures")
)

// IsMaxIterations reports whether the loop stopped at its iteration cap.
func IsMaxIterations(err error) bool {
	return errors.Is(err, ErrMaxIterationsReached)
}

// IsConsecutiveFailures reports whether the loop stopped on repeated
// all-failed tool rounds.
func IsConsecutiveFailures(err error) bool {
	return errors.Is(err, ErrConsecutiveToolFailures)
}

// IsLoopCancelled reports whether the loop stopped on context
// cancellation.
func IsLoopCancelled(err error) bool {
	return errors.Is(err, ErrContextCancelled)
}

// =============================================================================
// MESSAGES
// =============================================================================

// Message is one turn in the conversation. The JSON shape matches what
// chat APIs expect, so messages can be sent on the wire as-is.
type Message struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []ToolCallMessage `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

// ToolCallMessage is a tool invocation requested by the model.
type ToolCallMessage struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewAssistantMessageWithToolCalls creates an assistant message carrying
// tool call requests.
func NewAssistantMessageWithToolCalls(content string, toolCalls []ToolCallMessage) Message {
	return Message{Role: "assistant", Content: content, ToolCalls: toolCalls}
}

// NewToolResultMessage creates a tool result message correlated to the
// call that produced it.
func NewToolResultMessage(toolCallID, content string) Message {
	return Message{Role: "tool", Content: content, ToolCallID: toolCallID}
}

// ChatFunc sends the conversation to a model and returns its text
// response plus any tool calls it requested. Implementations wrap a
// concrete client (local Ollama, cloud API).
type ChatFunc func(messages []Message) (string, []ToolCallMessage, error)

// =============================================================================
// AGENTIC LOOP
// =============================================================================

// AgenticLoop runs the tool-calling conversation. It is safe for one
// Run at a time; the mutex guards the conversation against callback
// readers.
type AgenticLoop struct {
	executor             *Executor
	maxIterations        int
	maxConsecutiveErrors int
	loopTimeout          time.Duration

	mu                sync.Mutex
	conversation      []Message
	currentIteration  int
	consecutiveErrors int
	loopStartTime     time.Time

	onToolCall   func(name string, args map[string]interface{})
	onToolResult func(name string, result Result)
}

// NewAgenticLoop creates a loop over the given executor with default
// limits.
func NewAgenticLoop(executor *Executor) *AgenticLoop {
	return &AgenticLoop{
		executor:             executor,
		maxIterations:        DefaultMaxIterations,
		maxConsecutiveErrors: DefaultMaxConsecutiveErrors,
		loopTimeout:          DefaultLoopTimeout,
	}
}

// SetMaxIterations overrides the iteration cap.
func (l *AgenticLoop) SetMaxIterations(n int) {
	if n > 0 {
		l.maxIterations = n
	}
}

// SetLoopTimeout overrides the wall-clock budget.
func (l *AgenticLoop) SetLoopTimeout(d time.Duration) {
	if d > 0 {
		l.loopTimeout = d
	}
}

// SetCallbacks installs observers invoked before each tool call and
// after each result. Either may be nil.
func (l *AgenticLoop) SetCallbacks(
	onToolCall func(name string, args map[string]interface{}),
	onToolResult func(name string, result Result),
) {
	l.onToolCall = onToolCall
	l.onToolResult = onToolResult
}

// AddMessage appends a message to the conversation.
func (l *AgenticLoop) AddMessage(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conversation = append(l.conversation, msg)
}

// Conversation returns a copy of the conversation so far.
func (l *AgenticLoop) Conversation() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := make([]Message, len(l.conversation))
	copy(msgs, l.conversation)
	return msgs
}

// ClearConversation discards the conversation.
func (l *AgenticLoop) ClearConversation() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conversation = nil
}

// CurrentIteration reports how many model round-trips the last Run used.
func (l *AgenticLoop) CurrentIteration() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentIteration
}

// RunWithInitialMessage appends a user message and runs the loop.
func (l *AgenticLoop) RunWithInitialMessage(ctx context.Context, chat ChatFunc, userMessage string) (string, error) {
	l.AddMessage(NewUserMessage(userMessage))
	return l.Run(ctx, chat)
}

// Run drives the conversation until the model answers without tool
// calls, returning that answer. The loop stops early with a wrapped
// sentinel error on cancellation, iteration cap, wall-clock budget, or
// repeated all-failed tool rounds.
func (l *AgenticLoop) Run(ctx context.Context, chat ChatFunc) (string, error) {
	l.mu.Lock()
	l.currentIteration = 0
	l.consecutiveErrors = 0
	l.loopStartTime = time.Now()
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		default:
		}

		if time.Since(l.loopStartTime) > l.loopTimeout {
			return "", fmt.Errorf("%w after %s", ErrLoopTimeout, l.loopTimeout)
		}

		l.mu.Lock()
		l.currentIteration++
		iteration := l.currentIteration
		messages := make([]Message, len(l.conversation))
		copy(messages, l.conversation)
		l.mu.Unlock()

		if iteration > l.maxIterations {
			return "", fmt.Errorf("%w (%d)", ErrMaxIterationsReached, l.maxIterations)
		}

		response, toolCalls, err := chat(messages)
		if err != nil {
			return "", fmt.Errorf("chat call failed: %w", err)
		}

		// No tool calls means the model is done
		if len(toolCalls) == 0 {
			if response != "" {
				l.AddMessage(NewAssistantMessage(response))
			}
			return response, nil
		}

		l.AddMessage(NewAssistantMessageWithToolCalls(response, toolCalls))

		allFailed := true
		for _, call := range toolCalls {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			default:
			}

			if l.onToolCall != nil {
				l.onToolCall(call.Name, call.Arguments)
			}

			result, _ := l.executor.Execute(ctx, ToolCall{
				ID:     call.ID,
				Name:   call.Name,
				Params: call.Arguments,
			})
			if result.Success {
				allFailed = false
			}

			if l.onToolResult != nil {
				l.onToolResult(call.Name, result)
			}

			content := FormatToolResult(call.Name, call.ID, result)
			l.AddMessage(NewToolResultMessage(call.ID, content))
		}

		l.mu.Lock()
		if allFailed {
			l.consecutiveErrors++
		} else {
			l.consecutiveErrors = 0
		}
		consecutive := l.consecutiveErrors
		l.mu.Unlock()

		if consecutive >= l.maxConsecutiveErrors {
			return "", fmt.Errorf("%w (%d in a row)", ErrConsecutiveToolFailures, consecutive)
		}
	}
}

// FormatToolResult renders an execution result as the content of a tool
// message. Success and failure both become readable text so the model
// can react to either.
func FormatToolResult(toolName, callID string, result Result) string {
	var sb strings.Builder

	if result.Success {
		sb.WriteString(fmt.Sprintf("Tool '%s' (id: %s) completed successfully.\n\n", toolName, callID))
		if result.Output != "" {
			sb.WriteString("Output:\n")
			sb.WriteString(result.Output)
		} else {
			sb.WriteString("(no output)")
		}
	} else {
		sb.WriteString(fmt.Sprintf("Tool '%s' (id: %s) failed.\n\n", toolName, callID))
		sb.WriteString("Error: ")
		sb.WriteString(result.Error)
	}

	sb.WriteString(fmt.Sprintf("\n\nDuration: %v", result.Duration.Round(time.Millisecond)))
	if result.Truncated {
		sb.WriteString("\n(output was truncated)")
	}

	return sb.String()
}

// =============================================================================
// RESPONSE PARSING
// =============================================================================

// ParseToolCallsFromResponse extracts tool calls from a model response
// that did not use structured tool calling. Several shapes are accepted
// because small local models emit tool calls in inconsistent formats: a
// bare JSON array, a bare object, a {"tool_calls": [...]} wrapper with
// possibly string-encoded arguments, or call objects embedded in prose.
func ParseToolCallsFromResponse(response string) []ToolCallMessage {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var calls []ToolCallMessage
		if err := json.Unmarshal([]byte(trimmed), &calls); err == nil &&
			len(calls) > 0 && calls[0].Name != "" {
			return ensureCallIDs(calls)
		}
	}

	if strings.HasPrefix(trimmed, "{") {
		var call ToolCallMessage
		if err := json.Unmarshal([]byte(trimmed), &call); err == nil && call.Name != "" {
			return ensureCallIDs([]ToolCallMessage{call})
		}

		var wrapper struct {
			ToolCalls []struct {
				ID        string          `json:"id"`
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"tool_calls"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapper); err == nil && len(wrapper.ToolCalls) > 0 {
			calls := make([]ToolCallMessage, 0, len(wrapper.ToolCalls))
			for _, tc := range wrapper.ToolCalls {
				calls = append(calls, ToolCallMessage{
					ID:        tc.ID,
					Name:      tc.Name,
					Arguments: decodeArguments(tc.Arguments),
				})
			}
			return ensureCallIDs(calls)
		}
	}

	return ensureCallIDs(parseEmbeddedToolCalls(trimmed))
}

// decodeArguments accepts arguments as either a JSON object or a
// JSON-encoded string holding an object.
func decodeArguments(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return map[string]interface{}{}
	}

	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &args); err == nil {
			return args
		}
	}

	return map[string]interface{}{}
}

// parseEmbeddedToolCalls scans prose for JSON objects that look like
// tool calls. Brace depth is tracked by hand because the objects sit
// inside surrounding text; string contents are skipped so braces in
// argument values do not confuse the scan. Objects without an arguments
// key are ignored to avoid mistaking ordinary JSON for a call.
func parseEmbeddedToolCalls(s string) []ToolCallMessage {
	var calls []ToolCallMessage

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}

		depth := 0
		inString := false
		escaped := false
		end := -1
		for j := i; j < len(s); j++ {
			c := s[j]
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				if inString {
					escaped = true
				}
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						end = j
					}
				}
			}
			if end != -1 {
				break
			}
		}
		if end == -1 {
			break
		}

		candidate := s[i : end+1]
		var call ToolCallMessage
		if err := json.Unmarshal([]byte(candidate), &call); err == nil &&
			call.Name != "" && call.Arguments != nil {
			calls = append(calls, call)
		}
		i = end
	}

	return calls
}

// ensureCallIDs fills in identifiers for calls that arrived without one
// so result messages can still be correlated.
func ensureCallIDs(calls []ToolCallMessage) []ToolCallMessage {
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = generateCallID()
		}
	}
	return calls
}

// generateCallID mints a short unique identifier for a tool call.
func generateCallID() string {
	return "call_" + uuid.New().String()[:8]
}
